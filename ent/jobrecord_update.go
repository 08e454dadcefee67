// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/teachkit/packgen/ent/jobrecord"
	"github.com/teachkit/packgen/ent/predicate"
)

// JobRecordUpdate is the builder for updating JobRecord entities.
type JobRecordUpdate struct {
	config
	hooks    []Hook
	mutation *JobRecordMutation
}

// Where appends a list predicates to the JobRecordUpdate builder.
func (_u *JobRecordUpdate) Where(ps ...predicate.JobRecord) *JobRecordUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetStatus sets the "status" field.
func (_u *JobRecordUpdate) SetStatus(v string) *JobRecordUpdate {
	_u.mutation.SetStatus(v)
	return _u
}

// SetNillableStatus sets the "status" field if the given value is not nil.
func (_u *JobRecordUpdate) SetNillableStatus(v *string) *JobRecordUpdate {
	if v != nil {
		_u.SetStatus(*v)
	}
	return _u
}

// SetPayload sets the "payload" field.
func (_u *JobRecordUpdate) SetPayload(v string) *JobRecordUpdate {
	_u.mutation.SetPayload(v)
	return _u
}

// SetNillablePayload sets the "payload" field if the given value is not nil.
func (_u *JobRecordUpdate) SetNillablePayload(v *string) *JobRecordUpdate {
	if v != nil {
		_u.SetPayload(*v)
	}
	return _u
}

// SetCompletedAt sets the "completed_at" field.
func (_u *JobRecordUpdate) SetCompletedAt(v time.Time) *JobRecordUpdate {
	_u.mutation.SetCompletedAt(v)
	return _u
}

// SetNillableCompletedAt sets the "completed_at" field if the given value is not nil.
func (_u *JobRecordUpdate) SetNillableCompletedAt(v *time.Time) *JobRecordUpdate {
	if v != nil {
		_u.SetCompletedAt(*v)
	}
	return _u
}

// Mutation returns the JobRecordMutation object of the builder.
func (_u *JobRecordUpdate) Mutation() *JobRecordMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *JobRecordUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *JobRecordUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *JobRecordUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *JobRecordUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *JobRecordUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	_spec := sqlgraph.NewUpdateSpec(jobrecord.Table, jobrecord.Columns, sqlgraph.NewFieldSpec(jobrecord.FieldID, field.TypeInt))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.Status(); ok {
		_spec.SetField(jobrecord.FieldStatus, field.TypeString, value)
	}
	if value, ok := _u.mutation.Payload(); ok {
		_spec.SetField(jobrecord.FieldPayload, field.TypeString, value)
	}
	if value, ok := _u.mutation.CompletedAt(); ok {
		_spec.SetField(jobrecord.FieldCompletedAt, field.TypeTime, value)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{jobrecord.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// JobRecordUpdateOne is the builder for updating a single JobRecord entity.
type JobRecordUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *JobRecordMutation
}

// SetStatus sets the "status" field.
func (_u *JobRecordUpdateOne) SetStatus(v string) *JobRecordUpdateOne {
	_u.mutation.SetStatus(v)
	return _u
}

// SetNillableStatus sets the "status" field if the given value is not nil.
func (_u *JobRecordUpdateOne) SetNillableStatus(v *string) *JobRecordUpdateOne {
	if v != nil {
		_u.SetStatus(*v)
	}
	return _u
}

// SetPayload sets the "payload" field.
func (_u *JobRecordUpdateOne) SetPayload(v string) *JobRecordUpdateOne {
	_u.mutation.SetPayload(v)
	return _u
}

// SetNillablePayload sets the "payload" field if the given value is not nil.
func (_u *JobRecordUpdateOne) SetNillablePayload(v *string) *JobRecordUpdateOne {
	if v != nil {
		_u.SetPayload(*v)
	}
	return _u
}

// SetCompletedAt sets the "completed_at" field.
func (_u *JobRecordUpdateOne) SetCompletedAt(v time.Time) *JobRecordUpdateOne {
	_u.mutation.SetCompletedAt(v)
	return _u
}

// SetNillableCompletedAt sets the "completed_at" field if the given value is not nil.
func (_u *JobRecordUpdateOne) SetNillableCompletedAt(v *time.Time) *JobRecordUpdateOne {
	if v != nil {
		_u.SetCompletedAt(*v)
	}
	return _u
}

// Mutation returns the JobRecordMutation object of the builder.
func (_u *JobRecordUpdateOne) Mutation() *JobRecordMutation {
	return _u.mutation
}

// Where appends a list predicates to the JobRecordUpdate builder.
func (_u *JobRecordUpdateOne) Where(ps ...predicate.JobRecord) *JobRecordUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *JobRecordUpdateOne) Select(field string, fields ...string) *JobRecordUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated JobRecord entity.
func (_u *JobRecordUpdateOne) Save(ctx context.Context) (*JobRecord, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *JobRecordUpdateOne) SaveX(ctx context.Context) *JobRecord {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *JobRecordUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *JobRecordUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *JobRecordUpdateOne) sqlSave(ctx context.Context) (_node *JobRecord, err error) {
	_spec := sqlgraph.NewUpdateSpec(jobrecord.Table, jobrecord.Columns, sqlgraph.NewFieldSpec(jobrecord.FieldID, field.TypeInt))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "JobRecord.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, jobrecord.FieldID)
		for _, f := range fields {
			if !jobrecord.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != jobrecord.FieldID {
				_spec.Node.Columns = append(_spec.Node.Columns, f)
			}
		}
	}
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.Status(); ok {
		_spec.SetField(jobrecord.FieldStatus, field.TypeString, value)
	}
	if value, ok := _u.mutation.Payload(); ok {
		_spec.SetField(jobrecord.FieldPayload, field.TypeString, value)
	}
	if value, ok := _u.mutation.CompletedAt(); ok {
		_spec.SetField(jobrecord.FieldCompletedAt, field.TypeTime, value)
	}
	_node = &JobRecord{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{jobrecord.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
