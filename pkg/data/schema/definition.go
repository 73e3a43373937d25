package schema

import (
	"hiero-solo/pkg/data/mapper"
)

// Definition ties a typed model T to its descriptor table and migration
// chain.
type Definition[T any] struct {
	name       string
	descriptor *mapper.Descriptor
	chain      Chain
	mapper     *mapper.ObjectMapper
}

// NewDefinition creates a definition. The migrations must form a
// contiguous chain from version 0.
func NewDefinition[T any](name string, descriptor *mapper.Descriptor, m *mapper.ObjectMapper, migrations ...Migration) (*Definition[T], error) {
	chain, err := NewChain(migrations...)
	if err != nil {
		return nil, err
	}
	return &Definition[T]{
		name:       name,
		descriptor: descriptor,
		chain:      chain,
		mapper:     m,
	}, nil
}

// MustDefinition is NewDefinition that panics on an invalid chain. It is
// meant for package-level schema tables whose chains are fixed at compile
// time.
func MustDefinition[T any](name string, descriptor *mapper.Descriptor, m *mapper.ObjectMapper, migrations ...Migration) *Definition[T] {
	d, err := NewDefinition[T](name, descriptor, m, migrations...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the schema name.
func (d *Definition[T]) Name() string {
	return d.name
}

// Descriptor returns the property table of T.
func (d *Definition[T]) Descriptor() *mapper.Descriptor {
	return d.descriptor
}

// Mapper returns the object mapper used for conformance.
func (d *Definition[T]) Mapper() *mapper.ObjectMapper {
	return d.mapper
}

// Migrations returns the migration chain.
func (d *Definition[T]) Migrations() Chain {
	return d.chain
}

// CurrentVersion returns the version documents are migrated to.
func (d *Definition[T]) CurrentVersion() Version {
	return d.chain.Current()
}

// Migrate upgrades doc to the current version and conforms it to the
// descriptor. Properties the descriptor does not declare are dropped.
func (d *Definition[T]) Migrate(doc map[string]any) (map[string]any, error) {
	migrated, err := d.chain.Apply(d.name, doc)
	if err != nil {
		return nil, err
	}
	return d.mapper.Prune(d.descriptor, migrated)
}

// Transform upgrades doc and binds it to a new T.
func (d *Definition[T]) Transform(doc map[string]any) (*T, error) {
	migrated, err := d.Migrate(doc)
	if err != nil {
		return nil, err
	}

	var model T
	if err := mapper.ToModel(migrated, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// ToObject converts a model to its plain document.
func (d *Definition[T]) ToObject(model *T) (map[string]any, error) {
	obj, err := mapper.FromModel(model)
	if err != nil {
		return nil, err
	}
	return d.mapper.Prune(d.descriptor, obj)
}

// ToFlatKeyMap flattens a model with the definition's mapper.
func (d *Definition[T]) ToFlatKeyMap(model *T) (map[string]string, error) {
	obj, err := d.ToObject(model)
	if err != nil {
		return nil, err
	}
	return d.mapper.ToFlatKeyMap(d.descriptor, obj)
}
