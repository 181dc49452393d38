// Package indexing builds the cross-file symbol index that grounds
// detector decisions. The index is built in a parallel pass over all
// Java sources and is immutable once handed to detectors.
package indexing

import (
	"strings"

	"github.com/perfradar/radar/internal/types"
)

// queryMethodPrefixes are the data-access verb prefixes used when a
// call cannot be resolved through the index.
var queryMethodPrefixes = []string{
	"findBy", "findAll", "find",
	"saveAll", "save",
	"deleteBy", "deleteAll", "delete",
	"selectBy", "select",
	"queryBy", "query",
	"loadBy", "load",
	"fetchBy", "fetch",
	"getById", "getOne", "getBy",
	"insert", "update", "count", "exists", "list",
}

// dataAccessSuffixes classify a type or receiver as a data-access
// object by naming convention.
var dataAccessSuffixes = []string{"Repository", "Dao", "DAO", "Mapper", "repository", "repo", "dao", "mapper"}

// SymbolIndex maps names to declaration records across all scanned
// files. Method names collide across classes; records append, never
// overwrite.
type SymbolIndex struct {
	methods map[string][]types.MethodRecord
	classes map[string]types.TypeRecord
	fields  map[string]types.FieldRecord // keyed Class.field
	hashes  map[string]uint64            // file path -> content hash

	FilesIndexed   int
	FilesSkipped   int
	FrameworkHints []string
}

// NewSymbolIndex creates an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		methods: make(map[string][]types.MethodRecord),
		classes: make(map[string]types.TypeRecord),
		fields:  make(map[string]types.FieldRecord),
		hashes:  make(map[string]uint64),
	}
}

// AddMethod appends a method record. Name collisions are expected and
// preserved.
func (idx *SymbolIndex) AddMethod(rec types.MethodRecord) {
	idx.methods[rec.Name] = append(idx.methods[rec.Name], rec)
}

// AddClass records a type declaration. A later declaration of the same
// name wins; duplicate class names across files are rare enough in Java
// that last-write is acceptable.
func (idx *SymbolIndex) AddClass(rec types.TypeRecord) {
	idx.classes[rec.Name] = rec
}

// AddField records a field binding keyed Class.field.
func (idx *SymbolIndex) AddField(rec types.FieldRecord) {
	idx.fields[rec.ClassName+"."+rec.Name] = rec
}

// LookupMethods returns all declarations of the given method name.
func (idx *SymbolIndex) LookupMethods(name string) []types.MethodRecord {
	return idx.methods[name]
}

// LookupClass returns the declaration of the given class name.
func (idx *SymbolIndex) LookupClass(name string) (types.TypeRecord, bool) {
	rec, ok := idx.classes[name]
	return rec, ok
}

// FieldType resolves a field's declared type within a class.
func (idx *SymbolIndex) FieldType(className, fieldName string) (string, bool) {
	rec, ok := idx.fields[className+"."+fieldName]
	if !ok {
		return "", false
	}
	return rec.TypeName, true
}

// MethodCount returns the number of distinct method names indexed.
func (idx *SymbolIndex) MethodCount() int {
	return len(idx.methods)
}

// ClassCount returns the number of classes indexed.
func (idx *SymbolIndex) ClassCount() int {
	return len(idx.classes)
}

// IsDataAccessType reports whether a type name denotes a data-access
// object, either by index evidence (repository layer, @Repository or
// @Mapper annotation) or by naming convention.
func (idx *SymbolIndex) IsDataAccessType(typeName string) bool {
	if rec, ok := idx.classes[typeName]; ok {
		if rec.Layer == types.LayerRepository {
			return true
		}
		for _, a := range rec.Annotations {
			if a == "Repository" || a == "Mapper" {
				return true
			}
		}
	}
	return hasDataAccessSuffix(typeName)
}

// IsDataAccessCall reports whether a receiver.method() call is a
// confirmed data-access call: the receiver resolves to a data-access
// type through the index, within the named enclosing class.
func (idx *SymbolIndex) IsDataAccessCall(enclosingClass, receiver, method string) bool {
	if receiver == "" {
		return false
	}
	if typeName, ok := idx.FieldType(enclosingClass, receiver); ok {
		if idx.IsDataAccessType(typeName) {
			return true
		}
	}
	// The receiver may itself be a class name (static call).
	if idx.IsDataAccessType(receiver) {
		return true
	}
	return false
}

// IsQueryMethod reports whether a method name matches data-access verb
// prefixes. Heuristic only; callers downgrade severity accordingly.
func IsQueryMethod(name string) bool {
	for _, prefix := range queryMethodPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// hasDataAccessSuffix checks naming-convention classification.
func hasDataAccessSuffix(name string) bool {
	for _, suffix := range dataAccessSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Merge folds another index into this one. Used to combine per-worker
// partial indexes after the parallel build phase.
func (idx *SymbolIndex) Merge(other *SymbolIndex) {
	for name, recs := range other.methods {
		idx.methods[name] = append(idx.methods[name], recs...)
	}
	for name, rec := range other.classes {
		idx.classes[name] = rec
	}
	for key, rec := range other.fields {
		idx.fields[key] = rec
	}
	for path, hash := range other.hashes {
		idx.hashes[path] = hash
	}
	idx.FilesIndexed += other.FilesIndexed
	idx.FilesSkipped += other.FilesSkipped
}

// ContentHash returns the stored hash for a file path.
func (idx *SymbolIndex) ContentHash(path string) (uint64, bool) {
	h, ok := idx.hashes[path]
	return h, ok
}

// setContentHash records a file's content hash.
func (idx *SymbolIndex) setContentHash(path string, hash uint64) {
	idx.hashes[path] = hash
}
