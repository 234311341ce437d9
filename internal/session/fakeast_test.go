package session_test

import (
	"anteater/internal/sourceast"
)

// fakeUnit and fakeDecl satisfy just enough of the sourceast contract to
// drive the full pipeline (cfgbuild -> ssa -> metrics -> verify -> facts)
// over a trivial, empty-bodied declaration, without needing a real parser.

type fakeUnit struct {
	path  string
	decls []sourceast.Declaration
}

func (u *fakeUnit) Declarations() []sourceast.Declaration { return u.decls }
func (u *fakeUnit) Path() string                          { return u.path }
func (u *fakeUnit) ResolveOffset(offset int) (int, int)   { return offset + 1, 0 }

type fakeBlock struct{ offset int }

func (b fakeBlock) Kind() sourceast.StmtKind      { return sourceast.StmtBlock }
func (b fakeBlock) Offset() int                   { return b.offset }
func (b fakeBlock) Statements() []sourceast.Stmt  { return nil }

type fakeDecl struct {
	kind      sourceast.DeclarationKind
	name      string
	className string
	params    []sourceast.Param
	body      sourceast.Stmt
	offset    int
}

func (d *fakeDecl) Kind() sourceast.DeclarationKind                         { return d.kind }
func (d *fakeDecl) Name() string                                           { return d.name }
func (d *fakeDecl) ClassName() string                                      { return d.className }
func (d *fakeDecl) Parameters() []sourceast.Param                          { return d.params }
func (d *fakeDecl) Body() sourceast.Stmt                                   { return d.body }
func (d *fakeDecl) Initializers() []sourceast.ConstructorInitializer       { return nil }
func (d *fakeDecl) Offset() int                                            { return d.offset }

// emptyFunctionUnit builds a single-file unit with one trivial function
// declaration (empty body, no params) at the given path/name.
func emptyFunctionUnit(path, name string) *fakeUnit {
	decl := &fakeDecl{
		kind: sourceast.DeclFunction,
		name: name,
		body: fakeBlock{offset: 1},
	}
	return &fakeUnit{path: path, decls: []sourceast.Declaration{decl}}
}
