// Package bulkops orchestrates admin bulk operations: durable job rows plus
// an external worker process supervised over stdout progress markers.
package bulkops

import (
	"encoding/json"

	"inschoolz/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Params are the knobs accepted with a bulk-operation submission. Which
// fields are required depends on the operation type.
type Params struct {
	// Count is the number of bot accounts to create (create_bots) or the
	// cap on rows touched by delete operations.
	Count int `json:"count,omitempty" validate:"omitempty,min=1,max=15000"`
	// PostsPerSchool caps generated posts per school community.
	PostsPerSchool int `json:"posts_per_school,omitempty" validate:"omitempty,min=1,max=10"`
	// CommentsPerPost caps generated comments per post.
	CommentsPerPost int `json:"comments_per_post,omitempty" validate:"omitempty,min=1,max=5"`
}

// ValidateParams checks params against the rules of the given operation type.
func ValidateParams(opType models.BulkOperationType, p Params) error {
	if !opType.IsValid() {
		return models.NewValidationError("unknown operation type: " + string(opType))
	}
	if err := validate.Struct(p); err != nil {
		return models.NewValidationError("invalid params: " + err.Error())
	}

	switch opType {
	case models.BulkOpCreateBots:
		if p.Count == 0 {
			return models.NewValidationError("count is required for create_bots")
		}
	case models.BulkOpGeneratePosts:
		if p.PostsPerSchool == 0 {
			return models.NewValidationError("posts_per_school is required for generate_posts")
		}
	case models.BulkOpGenerateComments:
		if p.CommentsPerPost == 0 {
			return models.NewValidationError("comments_per_post is required for generate_comments")
		}
	}
	return nil
}

// Encode marshals params for storage on the operation row.
func (p Params) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodeParams reads params back off an operation row.
func DecodeParams(raw []byte) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}
