package ast

// Kind identifies the syntactic category of a node, as produced by the
// host's parser.
type Kind uint8

const (
	// KindError marks a node the parser could not form.
	KindError Kind = iota
	// KindToken covers keywords, operators, and delimiters. The checker
	// treats all of them as information-free clauses.
	KindToken

	KindMarkup
	KindCode
	KindMath
	KindCodeBlock
	KindContentBlock
	KindEquation

	KindText
	KindSpace
	KindParbreak
	KindLinebreak
	KindEscape
	KindRaw
	KindLink
	KindLabel
	KindRef
	KindHeading
	KindStrong
	KindEmph
	KindListItem
	KindEnumItem
	KindTermItem

	KindIdent
	KindMathIdent
	KindNone
	KindAuto
	KindBool
	KindInt
	KindFloat
	KindStr

	KindParenthesized
	KindArray
	KindDict
	KindNamed
	KindKeyed
	KindSpread
	KindUnary
	KindBinary
	KindFieldAccess
	KindFuncCall
	KindArgs
	KindClosure
	KindParams
	KindLetBinding
	KindSetRule
	KindShowRule
	KindConditional
	KindWhileLoop
	KindForLoop
	KindModuleImport
	KindModuleInclude
	KindImportItems
	KindDestructuring
	KindDestructAssignment
	KindUnderscore

	KindLoopBreak
	KindLoopContinue
	KindFuncReturn

	KindLineComment
	KindBlockComment
	KindEof
)

var kindNames = map[Kind]string{
	KindError:              "Error",
	KindToken:              "Token",
	KindMarkup:             "Markup",
	KindCode:               "Code",
	KindMath:               "Math",
	KindCodeBlock:          "CodeBlock",
	KindContentBlock:       "ContentBlock",
	KindEquation:           "Equation",
	KindText:               "Text",
	KindSpace:              "Space",
	KindParbreak:           "Parbreak",
	KindLinebreak:          "Linebreak",
	KindEscape:             "Escape",
	KindRaw:                "Raw",
	KindLink:               "Link",
	KindLabel:              "Label",
	KindRef:                "Ref",
	KindHeading:            "Heading",
	KindStrong:             "Strong",
	KindEmph:               "Emph",
	KindListItem:           "ListItem",
	KindEnumItem:           "EnumItem",
	KindTermItem:           "TermItem",
	KindIdent:              "Ident",
	KindMathIdent:          "MathIdent",
	KindNone:               "None",
	KindAuto:               "Auto",
	KindBool:               "Bool",
	KindInt:                "Int",
	KindFloat:              "Float",
	KindStr:                "Str",
	KindParenthesized:      "Parenthesized",
	KindArray:              "Array",
	KindDict:               "Dict",
	KindNamed:              "Named",
	KindKeyed:              "Keyed",
	KindSpread:             "Spread",
	KindUnary:              "Unary",
	KindBinary:             "Binary",
	KindFieldAccess:        "FieldAccess",
	KindFuncCall:           "FuncCall",
	KindArgs:               "Args",
	KindClosure:            "Closure",
	KindParams:             "Params",
	KindLetBinding:         "LetBinding",
	KindSetRule:            "SetRule",
	KindShowRule:           "ShowRule",
	KindConditional:        "Conditional",
	KindWhileLoop:          "WhileLoop",
	KindForLoop:            "ForLoop",
	KindModuleImport:       "ModuleImport",
	KindModuleInclude:      "ModuleInclude",
	KindImportItems:        "ImportItems",
	KindDestructuring:      "Destructuring",
	KindDestructAssignment: "DestructAssignment",
	KindUnderscore:         "Underscore",
	KindLoopBreak:          "LoopBreak",
	KindLoopContinue:       "LoopContinue",
	KindFuncReturn:         "FuncReturn",
	KindLineComment:        "LineComment",
	KindBlockComment:       "BlockComment",
	KindEof:                "Eof",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether nodes of this kind carry no expression value at
// all: comments, punctuation, and parse errors.
func (k Kind) IsTrivia() bool {
	switch k {
	case KindToken, KindLineComment, KindBlockComment, KindError, KindEof:
		return true
	}
	return false
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	UnPos UnOp = iota
	UnNeg
	UnNot
)

func (op UnOp) String() string {
	switch op {
	case UnPos:
		return "+"
	case UnNeg:
		return "-"
	case UnNot:
		return "not"
	}
	return "?"
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNeq
	BinLt
	BinLeq
	BinGt
	BinGeq
	BinAnd
	BinOr
	BinIn
	BinNotIn
	BinAssign
	BinAddAssign
	BinSubAssign
	BinMulAssign
	BinDivAssign
)

var binOpNames = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/",
	BinEq: "==", BinNeq: "!=", BinLt: "<", BinLeq: "<=", BinGt: ">", BinGeq: ">=",
	BinAnd: "and", BinOr: "or", BinIn: "in", BinNotIn: "not in",
	BinAssign: "=", BinAddAssign: "+=", BinSubAssign: "-=", BinMulAssign: "*=", BinDivAssign: "/=",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "?"
}
