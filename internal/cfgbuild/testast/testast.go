// Package testast provides minimal, hand-built sourceast.Declaration trees
// for exercising internal/cfgbuild without a real parser, mirroring the
// fixture-construction style the teacher's tests use for other AST-shaped
// inputs.
package testast

import "anteater/internal/sourceast"

type Decl struct {
	DKind   sourceast.DeclarationKind
	DName   string
	DClass  string
	DParams []sourceast.Param
	DBody   sourceast.Stmt
	DInits  []sourceast.ConstructorInitializer
	DOffset int
}

func (d *Decl) Kind() sourceast.DeclarationKind                    { return d.DKind }
func (d *Decl) Name() string                                       { return d.DName }
func (d *Decl) ClassName() string                                  { return d.DClass }
func (d *Decl) Parameters() []sourceast.Param                      { return d.DParams }
func (d *Decl) Body() sourceast.Stmt                                { return d.DBody }
func (d *Decl) Initializers() []sourceast.ConstructorInitializer   { return d.DInits }
func (d *Decl) Offset() int                                        { return d.DOffset }

type Block struct {
	Stmts  []sourceast.Stmt
	Offset_ int
}

func (b *Block) Kind() sourceast.StmtKind      { return sourceast.StmtBlock }
func (b *Block) Offset() int                   { return b.Offset_ }
func (b *Block) Statements() []sourceast.Stmt  { return b.Stmts }

type ExprStmt struct {
	Expr    sourceast.Expr
	Offset_ int
}

func (s *ExprStmt) Kind() sourceast.StmtKind   { return sourceast.StmtExpr }
func (s *ExprStmt) Offset() int                { return s.Offset_ }
func (s *ExprStmt) Expression() sourceast.Expr { return s.Expr }

type If struct {
	Cond_   sourceast.Expr
	Then_   sourceast.Stmt
	Else_   sourceast.Stmt
	Offset_ int
}

func (s *If) Kind() sourceast.StmtKind { return sourceast.StmtIf }
func (s *If) Offset() int              { return s.Offset_ }
func (s *If) Cond() sourceast.Expr     { return s.Cond_ }
func (s *If) Then() sourceast.Stmt     { return s.Then_ }
func (s *If) Else() sourceast.Stmt     { return s.Else_ }

type While struct {
	Cond_   sourceast.Expr
	Body_   sourceast.Stmt
	Offset_ int
}

func (s *While) Kind() sourceast.StmtKind { return sourceast.StmtWhile }
func (s *While) Offset() int              { return s.Offset_ }
func (s *While) Cond() sourceast.Expr     { return s.Cond_ }
func (s *While) Body() sourceast.Stmt     { return s.Body_ }

type Return struct {
	Value_  sourceast.Expr
	Offset_ int
}

func (s *Return) Kind() sourceast.StmtKind { return sourceast.StmtReturn }
func (s *Return) Offset() int              { return s.Offset_ }
func (s *Return) Value() sourceast.Expr    { return s.Value_ }

type Ident struct {
	Name_   string
	Offset_ int
}

func (e *Ident) Kind() sourceast.ExprKind { return sourceast.ExprIdentifier }
func (e *Ident) Offset() int              { return e.Offset_ }
func (e *Ident) Name() string             { return e.Name_ }

type IntLit struct {
	Value   int64
	Offset_ int
}

func (e *IntLit) Kind() sourceast.ExprKind         { return sourceast.ExprLiteral }
func (e *IntLit) Offset() int                      { return e.Offset_ }
func (e *IntLit) LiteralKind() sourceast.LiteralKind { return sourceast.LitInt }
func (e *IntLit) BoolValue() bool                  { return false }
func (e *IntLit) IntValue() int64                  { return e.Value }
func (e *IntLit) DoubleValue() float64             { return 0 }
func (e *IntLit) StringValue() string              { return "" }

type NullLit struct {
	Offset_ int
}

func (e *NullLit) Kind() sourceast.ExprKind           { return sourceast.ExprLiteral }
func (e *NullLit) Offset() int                        { return e.Offset_ }
func (e *NullLit) LiteralKind() sourceast.LiteralKind { return sourceast.LitNull }
func (e *NullLit) BoolValue() bool                    { return false }
func (e *NullLit) IntValue() int64                    { return 0 }
func (e *NullLit) DoubleValue() float64               { return 0 }
func (e *NullLit) StringValue() string                { return "" }

type Unary struct {
	Op_      sourceast.UnaryOp
	Operand_ sourceast.Expr
	Offset_  int
}

func (e *Unary) Kind() sourceast.ExprKind  { return sourceast.ExprUnary }
func (e *Unary) Offset() int               { return e.Offset_ }
func (e *Unary) Op() sourceast.UnaryOp     { return e.Op_ }
func (e *Unary) Operand() sourceast.Expr   { return e.Operand_ }

type Binary struct {
	Op_     sourceast.BinaryOp
	Left_   sourceast.Expr
	Right_  sourceast.Expr
	Offset_ int
}

func (e *Binary) Kind() sourceast.ExprKind { return sourceast.ExprBinary }
func (e *Binary) Offset() int              { return e.Offset_ }
func (e *Binary) Op() sourceast.BinaryOp   { return e.Op_ }
func (e *Binary) Left() sourceast.Expr     { return e.Left_ }
func (e *Binary) Right() sourceast.Expr    { return e.Right_ }

type Assign struct {
	Op_     sourceast.AssignmentOp
	Target_ sourceast.Expr
	Value_  sourceast.Expr
	Offset_ int
}

func (e *Assign) Kind() sourceast.ExprKind        { return sourceast.ExprAssignment }
func (e *Assign) Offset() int                     { return e.Offset_ }
func (e *Assign) Op() sourceast.AssignmentOp      { return e.Op_ }
func (e *Assign) Target() sourceast.Expr          { return e.Target_ }
func (e *Assign) Value() sourceast.Expr           { return e.Value_ }

type PropAccess struct {
	Receiver_ sourceast.Expr
	Field_    string
	Offset_   int
}

func (e *PropAccess) Kind() sourceast.ExprKind { return sourceast.ExprPropertyAccess }
func (e *PropAccess) Offset() int              { return e.Offset_ }
func (e *PropAccess) Receiver() sourceast.Expr { return e.Receiver_ }
func (e *PropAccess) FieldName() string        { return e.Field_ }

type MethodCall struct {
	Receiver_ sourceast.Expr // nil for a static/top-level call
	Method_   string
	Args_     []sourceast.Expr
	Offset_   int
}

func (e *MethodCall) Kind() sourceast.ExprKind      { return sourceast.ExprMethodInvocation }
func (e *MethodCall) Offset() int                   { return e.Offset_ }
func (e *MethodCall) Receiver() sourceast.Expr       { return e.Receiver_ }
func (e *MethodCall) MethodName() string            { return e.Method_ }
func (e *MethodCall) Args() []sourceast.Expr        { return e.Args_ }

type Index struct {
	Receiver_ sourceast.Expr
	Index_    sourceast.Expr
	Offset_   int
}

func (e *Index) Kind() sourceast.ExprKind { return sourceast.ExprIndex }
func (e *Index) Offset() int              { return e.Offset_ }
func (e *Index) Receiver() sourceast.Expr { return e.Receiver_ }
func (e *Index) Index() sourceast.Expr    { return e.Index_ }

type NewObj struct {
	Type_   string
	Ctor_   string
	Args_   []sourceast.Expr
	Offset_ int
}

func (e *NewObj) Kind() sourceast.ExprKind  { return sourceast.ExprObjectCreation }
func (e *NewObj) Offset() int               { return e.Offset_ }
func (e *NewObj) TypeName() string          { return e.Type_ }
func (e *NewObj) CtorName() string          { return e.Ctor_ }
func (e *NewObj) Args() []sourceast.Expr    { return e.Args_ }
