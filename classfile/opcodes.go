package classfile

import "strconv"

type Opcode uint8

// Opcodes the disassembler treats specially.
const (
	OpNop             Opcode = 0x00
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpLload           Opcode = 0x16
	OpFload           Opcode = 0x17
	OpDload           Opcode = 0x18
	OpAload           Opcode = 0x19
	OpIstore          Opcode = 0x36
	OpLstore          Opcode = 0x37
	OpFstore          Opcode = 0x38
	OpDstore          Opcode = 0x39
	OpAstore          Opcode = 0x3a
	OpIinc            Opcode = 0x84
	OpIfeq            Opcode = 0x99
	OpIfAcmpne        Opcode = 0xa6
	OpGoto            Opcode = 0xa7
	OpJsr             Opcode = 0xa8
	OpRet             Opcode = 0xa9
	OpTableswitch     Opcode = 0xaa
	OpLookupswitch    Opcode = 0xab
	OpReturn          Opcode = 0xb1
	OpGetstatic       Opcode = 0xb2
	OpPutstatic       Opcode = 0xb3
	OpGetfield        Opcode = 0xb4
	OpPutfield        Opcode = 0xb5
	OpInvokevirtual   Opcode = 0xb6
	OpInvokespecial   Opcode = 0xb7
	OpInvokestatic    Opcode = 0xb8
	OpInvokeinterface Opcode = 0xb9
	OpInvokedynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpNewarray        Opcode = 0xbc
	OpAnewarray       Opcode = 0xbd
	OpCheckcast       Opcode = 0xc0
	OpInstanceof      Opcode = 0xc1
	OpWide            Opcode = 0xc4
	OpMultianewarray  Opcode = 0xc5
	OpIfnull          Opcode = 0xc6
	OpIfnonnull       Opcode = 0xc7
	OpGotoW           Opcode = 0xc8
	OpJsrW            Opcode = 0xc9
	OpBreakpoint      Opcode = 0xca
	OpImpdep1         Opcode = 0xfe
	OpImpdep2         Opcode = 0xff
)

type operandKind uint8

const (
	operandNone operandKind = iota
	operandByte
	operandShort
	operandLocal
	operandIinc
	operandLdc
	operandLdcWide
	operandField
	operandMethod
	operandInterfaceMethod
	operandDynamic
	operandClass
	operandArrayClass
	operandMultiArray
	operandNewArray
	operandBranch
	operandBranchWide
	operandTableswitch
	operandLookupswitch
	operandWide
)

type opcodeInfo struct {
	name    string
	operand operandKind
}

var standardOpcodeNames = [...]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4",
	"iconst_5", "lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1",
	"bipush", "sipush", "ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload",
	"dload", "aload", "iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3", "dload_0", "dload_1",
	"dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload", "laload",
	"faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore",
	"fstore", "dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0",
	"dstore_1", "dstore_2", "dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore",
	"lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore", "pop",
	"pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
	"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
	"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
	"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land",
	"ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d",
	"l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l",
	"d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl",
	"dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle", "if_icmpeq",
	"if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne", "goto",
	"jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn",
	"areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual", "invokespecial",
	"invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray", "arraylength", "athrow",
	"checkcast", "instanceof", "monitorenter", "monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w", "breakpoint",
}

var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opcodeInfo {
	var t [256]opcodeInfo
	for i, name := range standardOpcodeNames {
		t[i].name = name
	}
	t[OpImpdep1].name = "impdep1"
	t[OpImpdep2].name = "impdep2"

	set := func(kind operandKind, ops ...Opcode) {
		for _, op := range ops {
			t[op].operand = kind
		}
	}
	set(operandByte, OpBipush)
	set(operandShort, OpSipush)
	set(operandLdc, OpLdc)
	set(operandLdcWide, OpLdcW, OpLdc2W)
	set(operandLocal, OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet)
	set(operandIinc, OpIinc)
	for op := OpIfeq; op <= OpJsr; op++ {
		set(operandBranch, op)
	}
	set(operandBranch, OpIfnull, OpIfnonnull)
	set(operandBranchWide, OpGotoW, OpJsrW)
	set(operandTableswitch, OpTableswitch)
	set(operandLookupswitch, OpLookupswitch)
	set(operandField, OpGetstatic, OpPutstatic, OpGetfield, OpPutfield)
	set(operandMethod, OpInvokevirtual, OpInvokespecial, OpInvokestatic)
	set(operandInterfaceMethod, OpInvokeinterface)
	set(operandDynamic, OpInvokedynamic)
	set(operandClass, OpNew, OpCheckcast, OpInstanceof)
	set(operandArrayClass, OpAnewarray)
	set(operandMultiArray, OpMultianewarray)
	set(operandNewArray, OpNewarray)
	set(operandWide, OpWide)
	return t
}

// Defined reports whether op is assigned by the JVM specification,
// including the reserved breakpoint and impdep opcodes.
func (op Opcode) Defined() bool {
	return opcodeTable[op].name != ""
}

func (op Opcode) String() string {
	if name := opcodeTable[op].name; name != "" {
		return name
	}
	return "illegal_" + strconv.Itoa(int(op))
}

// Widenable reports whether op may follow a wide prefix.
func (op Opcode) Widenable() bool {
	k := opcodeTable[op].operand
	return k == operandLocal || k == operandIinc
}

// Array element type codes of newarray.
var newArrayTypeNames = map[uint8]string{
	4:  "boolean",
	5:  "char",
	6:  "float",
	7:  "double",
	8:  "byte",
	9:  "short",
	10: "int",
	11: "long",
}
