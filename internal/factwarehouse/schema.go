package factwarehouse

// coreSchema declares every predicate internal/facts emits (spec.md §4.4),
// bound to /string since facts.Fact's ids are synthesized strings
// ("funcName.b3", "funcName.call@42", ...) rather than Datalog-atomizable
// identifiers. The one non-string argument is the int -1 that Call/CallAt
// carry for a missing receiver or a discarded result, which ingest stores
// as a number. Loaded automatically by New so cmd/anteater query works
// against the base fact schema without a separate LoadSchemaString call.
const coreSchema = `
Decl Reachable(Block) bound [/string].
Decl Flow(From, To) bound [/string, /string].
Decl Alloc(Var, Heap) bound [/string, /string].
Decl AllocAt(Block, Var, Heap) bound [/string, /string, /string].
Decl Call(Site, Receiver, Method, Result) bound [/string, /string, /string, /string].
Decl CallAt(Block, Site, Receiver, Method, Result) bound [/string, /string, /string, /string, /string].
Decl LoadField(Base, Field, Target) bound [/string, /string, /string].
Decl LoadFieldAt(Block, Base, Field, Target) bound [/string, /string, /string, /string].
Decl StoreField(Base, Field, Source) bound [/string, /string, /string].
Decl StoreFieldAt(Block, Base, Field, Source) bound [/string, /string, /string, /string].
Decl Assign(Target, Source) bound [/string, /string].
Decl AssignAt(Block, Target, Source) bound [/string, /string, /string].
Decl PhiAt(Block, Target, PredBlock, Source) bound [/string, /string, /string, /string].

` + duplicateOfSchema

// duplicateOfSchema declares the one predicate this package adds beyond
// what internal/facts emits: internal/debt's cross-file duplicate-code
// correlation (SPEC_FULL.md's C9 section). A host records a duplicate pair
// with Ingest([]facts.Fact{{Predicate: "DuplicateOf", Args: []interface{}{fileA, fileB}}})
// and later queries it back with Warehouse.Query("DuplicateOf(X, Y)").
const duplicateOfSchema = `Decl DuplicateOf(FileA, FileB) bound [/string, /string].`
