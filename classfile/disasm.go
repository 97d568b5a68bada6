package classfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

// Instruction is one decoded bytecode instruction.
//
// Index holds the constant pool index or local variable slot the
// instruction refers to. Operands holds its remaining immediate values:
// the bipush/sipush value, the iinc increment, the invokeinterface count,
// the multianewarray dimensions or the newarray type code. Branch and
// switch targets are absolute offsets into the code array.
type Instruction struct {
	Offset   int
	Length   int
	Opcode   Opcode
	Wide     bool
	Index    int
	Operands []int
	Targets  []int
	Default  int
	Low      int32
	High     int32
	Matches  []int32
	Text     string
}

type DisassemblerOption func(*Disassembler)

// WithVerbose appends constant pool indices to resolved operands.
func WithVerbose(verbose bool) DisassemblerOption {
	return func(d *Disassembler) {
		d.verbose = verbose
	}
}

func WithDisassemblerLogger(l commonlog.Logger) DisassemblerOption {
	return func(d *Disassembler) {
		if l != nil {
			d.log = l
		}
	}
}

// Disassembler renders bytecode against a constant pool.
type Disassembler struct {
	pool    *ConstantPool
	verbose bool
	log     logger
}

func NewDisassembler(pool *ConstantPool, opts ...DisassemblerOption) *Disassembler {
	d := &Disassembler{pool: pool, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CodeToString disassembles code into one line per instruction, each
// prefixed by its offset.
func CodeToString(code []byte, pool *ConstantPool, verbose bool) (string, error) {
	return NewDisassembler(pool, WithVerbose(verbose)).String(code)
}

func (d *Disassembler) String(code []byte) (string, error) {
	instructions, err := d.Decode(code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, ins := range instructions {
		fmt.Fprintf(&sb, "%-6s%s\n", strconv.Itoa(ins.Offset)+":", ins.Text)
	}
	return sb.String(), nil
}

type wideState uint8

const (
	wideNormal wideState = iota
	wideArmed
)

// Decode decodes the whole code array. A wide prefix is reported as an
// instruction of its own and marks the following instruction as Wide.
func (d *Disassembler) Decode(code []byte) ([]Instruction, error) {
	r := newBytesReader(code)
	var out []Instruction
	state := wideNormal

	for int(r.n) < len(code) {
		start := int(r.n)
		op := Opcode(r.readU1())

		ins, err := d.decode(r, start, op, state == wideArmed)
		if err != nil {
			return nil, err
		}
		if r.err != nil {
			return nil, &FormatError{Op: "disassemble", Msg: fmt.Sprintf("%s at %d is truncated", op, start), Err: r.err}
		}
		ins.Length = int(r.n) - start
		out = append(out, ins)

		switch {
		case op == OpWide:
			state = wideArmed
		case state == wideArmed:
			state = wideNormal
		}
	}
	if state == wideArmed {
		return nil, formatErrorf("disassemble", "wide prefix at end of code")
	}
	return out, nil
}

func (d *Disassembler) indexSuffix(index int) string {
	if d.verbose {
		return " (" + strconv.Itoa(index) + ")"
	}
	return ""
}

func (d *Disassembler) constant(op Opcode, offset, index int, tag ConstantTag) (string, error) {
	s, err := d.pool.ConstantToString(uint16(index), tag)
	if err != nil {
		return "", fmt.Errorf("%s at %d: %w", op, offset, err)
	}
	return s, nil
}

func (d *Disassembler) loadable(op Opcode, offset, index int) (string, error) {
	c, err := d.pool.Get(uint16(index))
	if err != nil {
		return "", fmt.Errorf("%s at %d: %w", op, offset, err)
	}
	return d.constant(op, offset, index, c.Tag())
}

func (d *Disassembler) decode(r *reader, offset int, op Opcode, wide bool) (Instruction, error) {
	ins := Instruction{Offset: offset, Opcode: op, Wide: wide}
	if !op.Defined() {
		return ins, formatErrorf("disassemble", "undefined opcode 0x%02x at %d", uint8(op), offset)
	}
	if wide && !op.Widenable() {
		return ins, formatErrorf("disassemble", "wide cannot modify %s at %d", op, offset)
	}

	var sb strings.Builder
	sb.WriteString(op.String())

	switch opcodeTable[op].operand {
	case operandNone:

	case operandByte:
		v := int(r.readS1())
		ins.Operands = []int{v}
		fmt.Fprintf(&sb, "\t\t%d", v)

	case operandShort:
		v := int(r.readS2())
		ins.Operands = []int{v}
		fmt.Fprintf(&sb, "\t\t%d", v)

	case operandLocal:
		if wide {
			ins.Index = int(r.readU2())
		} else {
			ins.Index = int(r.readU1())
		}
		fmt.Fprintf(&sb, "\t\t%%%d", ins.Index)

	case operandIinc:
		var inc int
		if wide {
			ins.Index = int(r.readU2())
			inc = int(r.readS2())
		} else {
			ins.Index = int(r.readU1())
			inc = int(r.readS1())
		}
		ins.Operands = []int{inc}
		fmt.Fprintf(&sb, "\t\t%%%d\t%d", ins.Index, inc)

	case operandBranch:
		target := offset + int(r.readS2())
		ins.Targets = []int{target}
		fmt.Fprintf(&sb, "\t\t#%d", target)

	case operandBranchWide:
		target := offset + int(r.readS4())
		ins.Targets = []int{target}
		fmt.Fprintf(&sb, "\t\t#%d", target)

	case operandTableswitch, operandLookupswitch:
		if err := d.decodeSwitch(r, &ins, &sb); err != nil {
			return ins, err
		}

	case operandNewArray:
		atype := r.readU1()
		if r.err != nil {
			break
		}
		name, ok := newArrayTypeNames[atype]
		if !ok {
			return ins, formatErrorf("disassemble", "newarray at %d has invalid type code %d", offset, atype)
		}
		ins.Operands = []int{int(atype)}
		fmt.Fprintf(&sb, "\t\t<%s>", name)

	case operandWide:
		sb.WriteString("\t(wide)")

	default:
		if err := d.decodeReference(r, &ins, &sb); err != nil {
			return ins, err
		}
	}

	ins.Text = sb.String()
	return ins, nil
}

// decodeReference handles the instructions whose operand is a constant
// pool index.
func (d *Disassembler) decodeReference(r *reader, ins *Instruction, sb *strings.Builder) error {
	op, offset := ins.Opcode, ins.Offset
	kind := opcodeTable[op].operand

	if kind == operandLdc {
		ins.Index = int(r.readU1())
	} else {
		ins.Index = int(r.readU2())
	}
	var extra []int
	switch kind {
	case operandInterfaceMethod:
		extra = []int{int(r.readU1()), int(r.readU1())}
	case operandDynamic:
		extra = []int{int(r.readU1()), int(r.readU1())}
	case operandMultiArray:
		extra = []int{int(r.readU1())}
	}
	if r.err != nil {
		return nil
	}

	var s string
	var err error
	switch kind {
	case operandLdc, operandLdcWide:
		s, err = d.loadable(op, offset, ins.Index)
		if err == nil {
			fmt.Fprintf(sb, "\t\t%s%s", s, d.indexSuffix(ins.Index))
		}

	case operandField:
		s, err = d.constant(op, offset, ins.Index, ConstantFieldref)
		if err == nil {
			fmt.Fprintf(sb, "\t\t%s%s", s, d.indexSuffix(ins.Index))
		}

	case operandMethod:
		tag := ConstantMethodref
		if op != OpInvokevirtual {
			// invokespecial and invokestatic may name interface methods.
			if c, gerr := d.pool.Get(uint16(ins.Index)); gerr == nil && c.Tag() == ConstantInterfaceMethodref {
				tag = ConstantInterfaceMethodref
			}
		}
		s, err = d.constant(op, offset, ins.Index, tag)
		if err == nil {
			fmt.Fprintf(sb, "\t%s%s", s, d.indexSuffix(ins.Index))
		}

	case operandInterfaceMethod:
		ins.Operands = extra[:1]
		s, err = d.constant(op, offset, ins.Index, ConstantInterfaceMethodref)
		if err == nil {
			fmt.Fprintf(sb, "\t%s%s\t%d\t%d", s, d.indexSuffix(ins.Index), extra[0], extra[1])
		}

	case operandDynamic:
		s, err = d.constant(op, offset, ins.Index, ConstantInvokeDynamic)
		if err == nil {
			fmt.Fprintf(sb, "\t%s%s", s, d.indexSuffix(ins.Index))
		}

	case operandClass:
		s, err = d.constant(op, offset, ins.Index, ConstantClass)
		if err == nil {
			if op != OpInstanceof {
				sb.WriteString("\t")
			}
			fmt.Fprintf(sb, "\t<%s>%s", s, d.indexSuffix(ins.Index))
		}

	case operandArrayClass:
		s, err = d.constant(op, offset, ins.Index, ConstantClass)
		if err == nil {
			fmt.Fprintf(sb, "\t\t<%s>%s", s, d.indexSuffix(ins.Index))
		}

	case operandMultiArray:
		ins.Operands = extra
		s, err = d.constant(op, offset, ins.Index, ConstantClass)
		if err == nil {
			fmt.Fprintf(sb, "\t<%s>\t%d%s", s, extra[0], d.indexSuffix(ins.Index))
		}

	default:
		return formatErrorf("disassemble", "no operand decoder for %s", op)
	}
	return err
}

// decodeSwitch reads the padding, default offset and table of a
// tableswitch or lookupswitch. Padding aligns the fixed fields to a multiple
// of four from the start of the code array.
func (d *Disassembler) decodeSwitch(r *reader, ins *Instruction, sb *strings.Builder) error {
	op, offset := ins.Opcode, ins.Offset

	padding := (4 - int(r.n)%4) % 4
	for range padding {
		if b := r.readU1(); b != 0 && r.err == nil {
			d.log.Warningf("padding byte 0x%02x in %s at %d", b, op, offset)
		}
	}
	ins.Default = offset + int(r.readS4())

	if op == OpTableswitch {
		ins.Low = r.readS4()
		ins.High = r.readS4()
		if r.err != nil {
			return nil
		}
		if ins.High < ins.Low {
			return formatErrorf("disassemble", "tableswitch at %d has high %d below low %d", offset, ins.High, ins.Low)
		}
		n := int64(ins.High) - int64(ins.Low) + 1
		if rem := r.remaining(); int64(rem) < 4*n {
			return formatErrorf("disassemble", "tableswitch at %d is truncated: %d entries need %d bytes, %d left", offset, n, 4*n, rem)
		}
		ins.Targets = make([]int, n)
		for i := range ins.Targets {
			ins.Targets[i] = offset + int(r.readS4())
		}
		fmt.Fprintf(sb, "\tdefault = %d, low = %d, high = %d(%s)", ins.Default, ins.Low, ins.High, joinInts(ins.Targets))
		return nil
	}

	npairs := r.readS4()
	if r.err != nil {
		return nil
	}
	if npairs < 0 {
		return formatErrorf("disassemble", "lookupswitch at %d has negative pair count %d", offset, npairs)
	}
	if rem := r.remaining(); int64(rem) < 8*int64(npairs) {
		return formatErrorf("disassemble", "lookupswitch at %d is truncated: %d pairs need %d bytes, %d left", offset, npairs, 8*int64(npairs), rem)
	}
	ins.Matches = make([]int32, npairs)
	ins.Targets = make([]int, npairs)
	pairs := make([]string, npairs)
	for i := range ins.Targets {
		ins.Matches[i] = r.readS4()
		ins.Targets[i] = offset + int(r.readS4())
		pairs[i] = fmt.Sprintf("(%d, %d)", ins.Matches[i], ins.Targets[i])
	}
	fmt.Fprintf(sb, "\tdefault = %d, npairs = %d (%s)", ins.Default, npairs, strings.Join(pairs, ", "))
	return nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
