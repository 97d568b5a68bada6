package classfile

import (
	"fmt"
	"slices"
	"strings"
)

type BootstrapMethodsAttribute struct {
	AttributeInfo
	BootstrapMethods []BootstrapMethod
}

// BootstrapMethod names a MethodHandle constant and its static arguments,
// which are loadable constants.
type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

func readBootstrapMethods(r *reader, info AttributeInfo) *BootstrapMethodsAttribute {
	a := &BootstrapMethodsAttribute{AttributeInfo: info}
	n := r.readU2()
	if r.err != nil {
		return a
	}
	a.BootstrapMethods = make([]BootstrapMethod, n)
	for i := range a.BootstrapMethods {
		a.BootstrapMethods[i] = BootstrapMethod{
			BootstrapMethodRef: r.readU2(),
			BootstrapArguments: r.readU2s(),
		}
	}
	return a
}

func (a *BootstrapMethodsAttribute) Kind() AttributeKind { return AttrBootstrapMethods }

func (a *BootstrapMethodsAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.BootstrapMethods = make([]BootstrapMethod, len(a.BootstrapMethods))
	for i, m := range a.BootstrapMethods {
		c.BootstrapMethods[i] = BootstrapMethod{
			BootstrapMethodRef: m.BootstrapMethodRef,
			BootstrapArguments: slices.Clone(m.BootstrapArguments),
		}
	}
	return &c
}

func (a *BootstrapMethodsAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.BootstrapMethods)))
	for _, m := range a.BootstrapMethods {
		w.writeU2(m.BootstrapMethodRef)
		w.writeU2s(m.BootstrapArguments)
	}
}

func (a *BootstrapMethodsAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BootstrapMethods(%d):", len(a.BootstrapMethods))
	for i, m := range a.BootstrapMethods {
		fmt.Fprintf(&sb, "\n  %d: %s", i, a.resolve(m.BootstrapMethodRef))
		if len(m.BootstrapArguments) == 0 {
			continue
		}
		sb.WriteString("\n     Method Arguments:")
		for j, arg := range m.BootstrapArguments {
			fmt.Fprintf(&sb, "\n     %d: %s", j, a.resolve(arg))
		}
	}
	return sb.String()
}

func (a *BootstrapMethodsAttribute) resolve(index uint16) string {
	c, err := a.Pool.Get(index)
	if err != nil {
		return fmt.Sprintf("#%d", index)
	}
	s, err := a.Pool.ResolveToString(c)
	if err != nil {
		return fmt.Sprintf("#%d", index)
	}
	return s
}
