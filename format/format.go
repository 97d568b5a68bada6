package format

import (
	"encoding"

	"github.com/dhamidi/classkit/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *classfile.ClassFile) error
}

func classKind(c *classfile.ClassFile) string {
	switch {
	case c.IsAnnotation():
		return "annotation"
	case c.IsEnum():
		return "enum"
	case c.IsInterface():
		return "interface"
	case c.IsModule():
		return "module"
	}
	if _, ok := classfile.FindAttribute[*classfile.RecordAttribute](c.Attributes); ok {
		return "record"
	}
	return "class"
}

func visibility(f classfile.AccessFlags) string {
	switch {
	case f.IsPublic():
		return "public"
	case f.IsProtected():
		return "protected"
	case f.IsPrivate():
		return "private"
	}
	return "package"
}

// flagNames lists the flags set in f that are not visibility, in a fixed
// order.
func flagNames(f classfile.AccessFlags, names []flagName) []string {
	var mods []string
	for _, n := range names {
		if f&n.flag != 0 {
			mods = append(mods, n.name)
		}
	}
	return mods
}

type flagName struct {
	flag classfile.AccessFlags
	name string
}

var (
	classFlagNames = []flagName{
		{classfile.AccFinal, "final"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccSynthetic, "synthetic"},
	}
	fieldFlagNames = []flagName{
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccVolatile, "volatile"},
		{classfile.AccTransient, "transient"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccEnum, "enum"},
	}
	methodFlagNames = []flagName{
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccSynchronized, "synchronized"},
		{classfile.AccNative, "native"},
		{classfile.AccBridge, "bridge"},
		{classfile.AccVarargs, "varargs"},
		{classfile.AccSynthetic, "synthetic"},
	}
)
