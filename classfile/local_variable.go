package classfile

import (
	"fmt"
	"slices"
	"strings"
)

// LocalVariable is an entry of a LocalVariableTable or LocalVariableTypeTable.
// DescriptorIndex holds a field descriptor in the former and a field
// signature in the latter.
type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

// Covers reports whether pc lies in [StartPC, StartPC+Length].
func (v LocalVariable) Covers(pc int) bool {
	start := int(v.StartPC)
	return pc >= start && pc <= start+int(v.Length)
}

func (v LocalVariable) format(cp *ConstantPool) string {
	name := cp.GetUtf8(v.NameIndex)
	desc := cp.GetUtf8(v.DescriptorIndex)
	typ, err := TypeSignatureToString(desc, false)
	if err != nil {
		typ = desc
	}
	return fmt.Sprintf("LocalVariable(start_pc = %d, length = %d, index = %d:%s %s)",
		v.StartPC, v.Length, v.Index, typ, name)
}

func readLocalVariables(r *reader) []LocalVariable {
	n := r.readU2()
	if r.err != nil {
		return nil
	}
	vars := make([]LocalVariable, n)
	for i := range vars {
		vars[i] = LocalVariable{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Index:           r.readU2(),
		}
	}
	return vars
}

func writeLocalVariables(w *writer, vars []LocalVariable) {
	w.writeU2(uint16(len(vars)))
	for _, v := range vars {
		w.writeU2(v.StartPC)
		w.writeU2(v.Length)
		w.writeU2(v.NameIndex)
		w.writeU2(v.DescriptorIndex)
		w.writeU2(v.Index)
	}
}

func findLocalVariable(vars []LocalVariable, index uint16, pc int) *LocalVariable {
	for i := range vars {
		if vars[i].Index == index && vars[i].Covers(pc) {
			return &vars[i]
		}
	}
	return nil
}

func localVariablesString(cp *ConstantPool, vars []LocalVariable) string {
	lines := make([]string, len(vars))
	for i, v := range vars {
		lines[i] = v.format(cp)
	}
	return strings.Join(lines, "\n")
}

type LocalVariableTableAttribute struct {
	AttributeInfo
	LocalVariableTable []LocalVariable
}

func (a *LocalVariableTableAttribute) Kind() AttributeKind { return AttrLocalVariableTable }

// LocalVariable returns the variable stored in slot index that is live at pc.
func (a *LocalVariableTableAttribute) LocalVariable(index uint16, pc int) *LocalVariable {
	return findLocalVariable(a.LocalVariableTable, index, pc)
}

// VariableName returns the name of the variable in slot index at pc.
func (a *LocalVariableTableAttribute) VariableName(index uint16, pc int) (string, bool) {
	if v := a.LocalVariable(index, pc); v != nil {
		return a.Pool.GetUtf8(v.NameIndex), true
	}
	return "", false
}

func (a *LocalVariableTableAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.LocalVariableTable = slices.Clone(a.LocalVariableTable)
	return &c
}

func (a *LocalVariableTableAttribute) writePayload(w *writer) {
	writeLocalVariables(w, a.LocalVariableTable)
}

func (a *LocalVariableTableAttribute) String() string {
	return localVariablesString(a.Pool, a.LocalVariableTable)
}

type LocalVariableTypeTableAttribute struct {
	AttributeInfo
	LocalVariableTypeTable []LocalVariable
}

func (a *LocalVariableTypeTableAttribute) Kind() AttributeKind { return AttrLocalVariableTypeTable }

func (a *LocalVariableTypeTableAttribute) LocalVariable(index uint16, pc int) *LocalVariable {
	return findLocalVariable(a.LocalVariableTypeTable, index, pc)
}

func (a *LocalVariableTypeTableAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.LocalVariableTypeTable = slices.Clone(a.LocalVariableTypeTable)
	return &c
}

func (a *LocalVariableTypeTableAttribute) writePayload(w *writer) {
	writeLocalVariables(w, a.LocalVariableTypeTable)
}

func (a *LocalVariableTypeTableAttribute) String() string {
	return localVariablesString(a.Pool, a.LocalVariableTypeTable)
}
