package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// JobRecord archives a finished generation job. The full job, result
// included, lives in the payload; status and timestamps are lifted into
// columns so listings don't decode JSON.
type JobRecord struct {
	ent.Schema
}

func (JobRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("job_id").
			Unique().
			Immutable().
			Comment("Job UUID assigned at creation"),
		field.String("status").
			Comment("Terminal status: completed, completed_with_errors, failed"),
		field.Text("payload").
			Comment("Full job record as JSON"),
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Comment("When the job was created"),
		field.Time("completed_at").
			Comment("When the job reached its terminal status"),
	}
}

func (JobRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("created_at"),
	}
}
