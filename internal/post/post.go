package post

import (
	"time"

	"github.com/inkpub/micropub/internal/mf2"
)

// Post is the persisted record of a published document. Deleted posts
// keep their record so they can be restored.
type Post struct {
	mf2.Document `bson:",inline"`
	Deleted      bool      `json:"deleted" bson:"deleted"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
