package classfile

import (
	"fmt"
	"slices"
	"strings"
)

type ModuleAttribute struct {
	AttributeInfo
	ModuleNameIndex    uint16
	ModuleFlags        AccessFlags
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModuleExports
	Opens              []ModuleOpens
	Uses               []uint16
	Provides           []ModuleProvides
}

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        AccessFlags
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	ExportsFlags   AccessFlags
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	OpensFlags   AccessFlags
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

func readModule(r *reader, info AttributeInfo) *ModuleAttribute {
	a := &ModuleAttribute{
		AttributeInfo:      info,
		ModuleNameIndex:    r.readU2(),
		ModuleFlags:        AccessFlags(r.readU2()),
		ModuleVersionIndex: r.readU2(),
	}

	n := r.readU2()
	if r.err != nil {
		return a
	}
	a.Requires = make([]ModuleRequires, n)
	for i := range a.Requires {
		a.Requires[i] = ModuleRequires{
			RequiresIndex:        r.readU2(),
			RequiresFlags:        AccessFlags(r.readU2()),
			RequiresVersionIndex: r.readU2(),
		}
	}

	n = r.readU2()
	if r.err != nil {
		return a
	}
	a.Exports = make([]ModuleExports, n)
	for i := range a.Exports {
		a.Exports[i] = ModuleExports{
			ExportsIndex:   r.readU2(),
			ExportsFlags:   AccessFlags(r.readU2()),
			ExportsToIndex: r.readU2s(),
		}
	}

	n = r.readU2()
	if r.err != nil {
		return a
	}
	a.Opens = make([]ModuleOpens, n)
	for i := range a.Opens {
		a.Opens[i] = ModuleOpens{
			OpensIndex:   r.readU2(),
			OpensFlags:   AccessFlags(r.readU2()),
			OpensToIndex: r.readU2s(),
		}
	}

	a.Uses = r.readU2s()

	n = r.readU2()
	if r.err != nil {
		return a
	}
	a.Provides = make([]ModuleProvides, n)
	for i := range a.Provides {
		a.Provides[i] = ModuleProvides{
			ProvidesIndex:     r.readU2(),
			ProvidesWithIndex: r.readU2s(),
		}
	}
	return a
}

func (a *ModuleAttribute) Kind() AttributeKind { return AttrModule }

func (a *ModuleAttribute) ModuleName() string { return a.Pool.GetModuleName(a.ModuleNameIndex) }

func (a *ModuleAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Requires = slices.Clone(a.Requires)
	c.Exports = make([]ModuleExports, len(a.Exports))
	for i, e := range a.Exports {
		e.ExportsToIndex = slices.Clone(e.ExportsToIndex)
		c.Exports[i] = e
	}
	c.Opens = make([]ModuleOpens, len(a.Opens))
	for i, o := range a.Opens {
		o.OpensToIndex = slices.Clone(o.OpensToIndex)
		c.Opens[i] = o
	}
	c.Uses = slices.Clone(a.Uses)
	c.Provides = make([]ModuleProvides, len(a.Provides))
	for i, p := range a.Provides {
		p.ProvidesWithIndex = slices.Clone(p.ProvidesWithIndex)
		c.Provides[i] = p
	}
	return &c
}

func (a *ModuleAttribute) writePayload(w *writer) {
	w.writeU2(a.ModuleNameIndex)
	w.writeU2(uint16(a.ModuleFlags))
	w.writeU2(a.ModuleVersionIndex)

	w.writeU2(uint16(len(a.Requires)))
	for _, req := range a.Requires {
		w.writeU2(req.RequiresIndex)
		w.writeU2(uint16(req.RequiresFlags))
		w.writeU2(req.RequiresVersionIndex)
	}

	w.writeU2(uint16(len(a.Exports)))
	for _, e := range a.Exports {
		w.writeU2(e.ExportsIndex)
		w.writeU2(uint16(e.ExportsFlags))
		w.writeU2s(e.ExportsToIndex)
	}

	w.writeU2(uint16(len(a.Opens)))
	for _, o := range a.Opens {
		w.writeU2(o.OpensIndex)
		w.writeU2(uint16(o.OpensFlags))
		w.writeU2s(o.OpensToIndex)
	}

	w.writeU2s(a.Uses)

	w.writeU2(uint16(len(a.Provides)))
	for _, p := range a.Provides {
		w.writeU2(p.ProvidesIndex)
		w.writeU2s(p.ProvidesWithIndex)
	}
}

func moduleFlagsString(f AccessFlags) string {
	var parts []string
	if f&AccOpen != 0 {
		parts = append(parts, "ACC_OPEN")
	}
	if f&AccStaticPhase != 0 {
		parts = append(parts, "ACC_STATIC_PHASE")
	}
	if f.IsSynthetic() {
		parts = append(parts, "ACC_SYNTHETIC")
	}
	if f&AccMandated != 0 {
		parts = append(parts, "ACC_MANDATED")
	}
	return fmt.Sprintf("(0x%04x) %s", uint16(f), strings.Join(parts, " "))
}

func (a *ModuleAttribute) String() string {
	cp := a.Pool
	var sb strings.Builder
	sb.WriteString("Module:\n")
	fmt.Fprintf(&sb, "  name:    %s\n", a.ModuleName())
	fmt.Fprintf(&sb, "  flags:   %s\n", moduleFlagsString(a.ModuleFlags))
	version := "0"
	if a.ModuleVersionIndex != 0 {
		version = cp.GetUtf8(a.ModuleVersionIndex)
	}
	fmt.Fprintf(&sb, "  version: %s\n", version)

	fmt.Fprintf(&sb, "  requires(%d):\n", len(a.Requires))
	for _, req := range a.Requires {
		v := "0"
		if req.RequiresVersionIndex != 0 {
			v = cp.GetUtf8(req.RequiresVersionIndex)
		}
		fmt.Fprintf(&sb, "    %s, %s, %s\n", cp.GetModuleName(req.RequiresIndex), moduleFlagsString(req.RequiresFlags), v)
	}

	packageTargets := func(title string, pkg uint16, flags AccessFlags, to []uint16) {
		fmt.Fprintf(&sb, "    %s, %s", CompactClassName(cp.GetPackageName(pkg), false), moduleFlagsString(flags))
		if len(to) > 0 {
			fmt.Fprintf(&sb, ", %s(%d):", title, len(to))
			for _, m := range to {
				sb.WriteString("\n      ")
				sb.WriteString(cp.GetModuleName(m))
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "  exports(%d):\n", len(a.Exports))
	for _, e := range a.Exports {
		packageTargets("to", e.ExportsIndex, e.ExportsFlags, e.ExportsToIndex)
	}
	fmt.Fprintf(&sb, "  opens(%d):\n", len(a.Opens))
	for _, o := range a.Opens {
		packageTargets("to", o.OpensIndex, o.OpensFlags, o.OpensToIndex)
	}

	fmt.Fprintf(&sb, "  uses(%d):\n", len(a.Uses))
	for _, u := range a.Uses {
		fmt.Fprintf(&sb, "    %s\n", CompactClassName(cp.GetClassName(u), false))
	}

	fmt.Fprintf(&sb, "  provides(%d):\n", len(a.Provides))
	for _, p := range a.Provides {
		fmt.Fprintf(&sb, "    %s, with(%d):", CompactClassName(cp.GetClassName(p.ProvidesIndex), false), len(p.ProvidesWithIndex))
		for _, impl := range p.ProvidesWithIndex {
			sb.WriteString("\n      ")
			sb.WriteString(CompactClassName(cp.GetClassName(impl), false))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

type ModulePackagesAttribute struct {
	AttributeInfo
	PackageIndex []uint16
}

func (a *ModulePackagesAttribute) Kind() AttributeKind { return AttrModulePackages }

func (a *ModulePackagesAttribute) PackageNames() []string {
	names := make([]string, len(a.PackageIndex))
	for i, idx := range a.PackageIndex {
		names[i] = CompactClassName(a.Pool.GetPackageName(idx), false)
	}
	return names
}

func (a *ModulePackagesAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.PackageIndex = slices.Clone(a.PackageIndex)
	return &c
}

func (a *ModulePackagesAttribute) writePayload(w *writer) { w.writeU2s(a.PackageIndex) }

func (a *ModulePackagesAttribute) String() string {
	return classListString("ModulePackages", a.PackageNames())
}

type ModuleMainClassAttribute struct {
	AttributeInfo
	MainClassIndex uint16
}

func (a *ModuleMainClassAttribute) Kind() AttributeKind { return AttrModuleMainClass }

func (a *ModuleMainClassAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *ModuleMainClassAttribute) writePayload(w *writer) { w.writeU2(a.MainClassIndex) }

func (a *ModuleMainClassAttribute) String() string {
	return "ModuleMainClass: " + CompactClassName(a.Pool.GetClassName(a.MainClassIndex), false)
}
