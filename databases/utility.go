package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPageLimit is used when a caller asks for a page without a size
const DefaultPageLimit = 20

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// newestFirst sorts by insertion order descending. ObjectIDs start with their
// creation second, so _id order is creation order.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
}
