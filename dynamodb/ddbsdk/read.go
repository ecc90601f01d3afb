package ddbsdk

import (
	"fmt"
	"math"
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AllPages makes a query or scan follow pagination to the end.
const AllPages = math.MaxInt

// readOpts are the options shared by queries and scans.
type readOpts struct {
	capacity          types.ReturnConsumedCapacity
	consistent        bool
	exclusiveStartKey Item
	limit             *int32
	maxPages          *int
	selectAttrs       types.Select
	attributes        []string
	filter            Condition
	filters           map[string]Condition
	noEntityAttr      bool
	tableName         *string
}

func (o *readOpts) setFilter(entityName string, c Condition) {
	if o.filters == nil {
		o.filters = make(map[string]Condition)
	}
	o.filters[entityName] = And(o.filters[entityName], c)
}

func (o readOpts) pages() int {
	if o.maxPages == nil {
		return 1
	}
	return *o.maxPages
}

// validate checks the options against the index read, "" for the table.
func (o readOpts) validate(index string) error {
	if err := validateCapacity(o.capacity); err != nil {
		return err
	}
	if o.consistent && index != "" {
		return ddberr.New(ddberr.OptionsInvalidConsistent,
			fmt.Sprintf("Invalid consistent option: consistent reads are not supported on global secondary index '%s'.", index),
			ddberr.WithPayload(map[string]any{"index": index}),
		)
	}
	if o.limit != nil && *o.limit <= 0 {
		return ddberr.New(ddberr.OptionsInvalidLimit,
			fmt.Sprintf("Invalid limit option: '%d'. 'limit' must be a strictly positive integer.", *o.limit),
			ddberr.WithPayload(map[string]any{"received": *o.limit}),
		)
	}
	if o.maxPages != nil && *o.maxPages < 1 {
		return ddberr.New(ddberr.OptionsInvalidMaxPages,
			fmt.Sprintf("Invalid maxPages option: '%d'. 'maxPages' must be a strictly positive integer.", *o.maxPages),
			ddberr.WithPayload(map[string]any{"received": *o.maxPages}),
		)
	}
	return o.validateSelect(index)
}

func (o readOpts) validateSelect(index string) error {
	s := o.selectAttrs
	if s == "" {
		return nil
	}
	invalid := func(reason string) error {
		return ddberr.New(ddberr.OptionsInvalidSelect,
			fmt.Sprintf("Invalid select option: '%s'. %s", s, reason),
			ddberr.WithPayload(map[string]any{"received": s}),
		)
	}
	if !slices.Contains(s.Values(), s) {
		return invalid(fmt.Sprintf("'select' must be one of: %v.", s.Values()))
	}
	if s == types.SelectAllProjectedAttributes && index == "" {
		return invalid("Projected attributes can only be selected on an index.")
	}
	if len(o.attributes) > 0 && s != types.SelectSpecificAttributes {
		return invalid("Select must be SPECIFIC_ATTRIBUTES when attributes are projected.")
	}
	if s == types.SelectSpecificAttributes && len(o.attributes) == 0 {
		return invalid("SPECIFIC_ATTRIBUTES requires the attributes option.")
	}
	return nil
}

func (o readOpts) selectValue() types.Select {
	if o.selectAttrs == "" && len(o.attributes) > 0 {
		return types.SelectSpecificAttributes
	}
	return o.selectAttrs
}

// filterCondition combines the filters of a read. Without entities the
// blind filter applies. With entities each contributes its entity
// attribute check ANDed with its own filter, and contributions are ORed.
// An entity contributing nothing matches everything, so no filter is sent.
func (o readOpts) filterCondition(entities []*entity.Entity) (expression.ConditionBuilder, error) {
	if len(entities) == 0 {
		return o.filter.builder(nil)
	}
	for name := range o.filters {
		if !slices.ContainsFunc(entities, func(e *entity.Entity) bool { return e.Name() == name }) {
			return expression.ConditionBuilder{}, ddberr.New(ddberr.EntityUnknownEntity,
				fmt.Sprintf("Filter set for entity '%s' which is not read by the command.", name),
				ddberr.WithPayload(map[string]any{"entity": name}),
			)
		}
	}
	var conds []expression.ConditionBuilder
	for _, e := range entities {
		var parts []expression.ConditionBuilder
		filter, hasFilter := o.filters[e.Name()]
		if et := e.EntityAttributeSavedAs(); et != "" && (hasFilter || !o.noEntityAttr) {
			parts = append(parts, expression.Name(et).Equal(expression.Value(e.Name())))
		}
		if hasFilter && filter.IsSet() {
			b, err := filter.builder(e)
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			parts = append(parts, b)
		}
		switch len(parts) {
		case 0:
			return expression.ConditionBuilder{}, nil
		case 1:
			conds = append(conds, parts[0])
		default:
			conds = append(conds, expression.And(parts[0], parts[1]))
		}
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return expression.Or(conds[0], conds[1], conds[2:]...), nil
}

// projectionFor resolves the attributes option for every entity read.
func (o readOpts) projectionFor(entities []*entity.Entity) (*expression.ProjectionBuilder, error) {
	if len(o.attributes) == 0 {
		return nil, nil
	}
	var names []string
	if len(entities) == 0 {
		names = o.attributes
	}
	for _, e := range entities {
		stored, err := storedPaths(e, o.attributes, true)
		if err != nil {
			return nil, err
		}
		names = append(names, stored...)
	}
	proj := projection(names)
	return &proj, nil
}

// readOptions are the option setters shared by QueryCommand and ScanCommand.
type readOptions[C any] struct {
	opts *readOpts
	cmd  C
}

func (r readOptions[C]) WithCapacity(c types.ReturnConsumedCapacity) C {
	r.opts.capacity = c
	return r.cmd
}

func (r readOptions[C]) WithConsistentRead() C {
	r.opts.consistent = true
	return r.cmd
}

// WithExclusiveStartKey resumes a read after the LastEvaluatedKey of a
// previous one.
func (r readOptions[C]) WithExclusiveStartKey(key Item) C {
	r.opts.exclusiveStartKey = key
	return r.cmd
}

// WithLimit caps the number of items evaluated per page.
func (r readOptions[C]) WithLimit(n int32) C {
	r.opts.limit = &n
	return r.cmd
}

// WithMaxPages follows pagination for up to n pages, see AllPages.
func (r readOptions[C]) WithMaxPages(n int) C {
	r.opts.maxPages = &n
	return r.cmd
}

func (r readOptions[C]) WithSelect(s types.Select) C {
	r.opts.selectAttrs = s
	return r.cmd
}

// WithAttributes projects the given attribute paths of every entity read.
func (r readOptions[C]) WithAttributes(paths ...string) C {
	r.opts.attributes = append(r.opts.attributes, paths...)
	return r.cmd
}

// WithFilter sets a filter on storage names, used when no entity is read.
func (r readOptions[C]) WithFilter(c Condition) C {
	r.opts.filter = And(r.opts.filter, c)
	return r.cmd
}

// WithEntityFilter filters the items of one entity.
func (r readOptions[C]) WithEntityFilter(entityName string, c Condition) C {
	r.opts.setFilter(entityName, c)
	return r.cmd
}

// WithoutEntityAttrFilter stops filtering on the entity attribute for
// entities without their own filter.
func (r readOptions[C]) WithoutEntityAttrFilter() C {
	r.opts.noEntityAttr = true
	return r.cmd
}

func (r readOptions[C]) WithTableName(name string) C {
	r.opts.tableName = &name
	return r.cmd
}

// ReadResult gathers the pages of a query or scan.
type ReadResult struct {
	// Items are formatted by the entity they belong to. Without entities
	// they are the raw stored items.
	Items            []map[string]any
	Count            int32
	ScannedCount     int32
	LastEvaluatedKey Item
	ConsumedCapacity []types.ConsumedCapacity
}

type page struct {
	items            []Item
	count            int32
	scannedCount     int32
	lastEvaluatedKey Item
	capacity         *types.ConsumedCapacity
}

// paginate sends pages until the last one or maxPages, whichever first.
func paginate(maxPages int, startKey Item, send func(startKey Item) (page, error)) (page, []page, error) {
	var pages []page
	key := startKey
	for n := 0; n < maxPages; n++ {
		p, err := send(key)
		if err != nil {
			return page{}, nil, err
		}
		pages = append(pages, p)
		key = p.lastEvaluatedKey
		if len(key) == 0 {
			break
		}
	}
	return pages[len(pages)-1], pages, nil
}

func (o readOpts) result(entities []*entity.Entity, pages []page, last page) (*ReadResult, error) {
	res := &ReadResult{LastEvaluatedKey: last.lastEvaluatedKey}
	r := newRouter(entities)
	for _, p := range pages {
		res.Count += p.count
		res.ScannedCount += p.scannedCount
		if p.capacity != nil {
			res.ConsumedCapacity = append(res.ConsumedCapacity, *p.capacity)
		}
		for _, raw := range p.items {
			item, ok, err := r.format(raw, o.attributes)
			if err != nil {
				return nil, err
			}
			if ok {
				res.Items = append(res.Items, item)
			}
		}
	}
	return res, nil
}

// router formats items with the entity named in their entity attribute.
type router struct {
	entities []*entity.Entity
	byName   map[string]*entity.Entity
}

func newRouter(entities []*entity.Entity) router {
	r := router{entities: entities, byName: make(map[string]*entity.Entity, len(entities))}
	for _, e := range entities {
		r.byName[e.Name()] = e
	}
	return r
}

// format returns ok false for items of entities not read by the command.
// Items without an entity attribute go to the first entity able to
// format them.
func (r router) format(raw Item, attributes []string) (map[string]any, bool, error) {
	saved, err := unmarshalItem(raw)
	if err != nil {
		return nil, false, err
	}
	if len(r.entities) == 0 {
		return saved, true, nil
	}
	opt := projectionOption(attributes)
	for _, e := range r.entities {
		et := e.EntityAttributeSavedAs()
		if et == "" {
			continue
		}
		name, ok := saved[et].(string)
		if !ok {
			continue
		}
		target, known := r.byName[name]
		if !known {
			return nil, false, nil
		}
		item, err := target.Format(saved, opt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to format %s item: %w", name, err)
		}
		return item, true, nil
	}
	for _, e := range r.entities {
		if item, err := e.Format(saved, opt); err == nil {
			return item, true, nil
		}
	}
	return nil, false, nil
}

func keyDefinitions(t table.TableDefinition, index string) (table.PrimaryKeyDefinition, bool) {
	if index == "" {
		return t.KeyDefinitions, true
	}
	gsi, ok := t.Index(index)
	return gsi.KeyDefinitions, ok
}
