package workflow

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

const boardWorkflow = "detective_board"

// BoardService keeps the detective board of each case: pins for notes and
// records, and the strings between them
type BoardService struct {
	base
}

// BoardItemInput creates or patches a pin. Nil fields are left alone on a
// patch and take their defaults on create.
type BoardItemInput struct {
	ItemType *string                `json:"item_type"`
	Title    *string                `json:"title"`
	Content  *string                `json:"content"`
	RefModel *string                `json:"ref_model"`
	RefID    *string                `json:"ref_id"`
	X        *float64               `json:"x"`
	Y        *float64               `json:"y"`
	Meta     map[string]interface{} `json:"meta"`
}

func (in BoardItemInput) empty() bool {
	return in.ItemType == nil && in.Title == nil && in.Content == nil && in.RefModel == nil &&
		in.RefID == nil && in.X == nil && in.Y == nil && in.Meta == nil
}

// apply copies the set fields onto it and checks the result
func (in BoardItemInput) apply(it *models.BoardItem) error {
	if in.ItemType != nil {
		kind := models.BoardItemType(strings.ToUpper(strings.TrimSpace(*in.ItemType)))
		if !kind.Valid() {
			return validationError("item_type is not a known board item type.").WithDetail("item_type", *in.ItemType)
		}
		it.Type = kind
	}
	if in.Title != nil {
		it.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		it.Content = *in.Content
	}
	if in.RefModel != nil {
		it.RefModel = strings.TrimSpace(*in.RefModel)
	}
	if in.RefID != nil {
		it.RefID = strings.TrimSpace(*in.RefID)
	}
	if in.X != nil {
		it.X = *in.X
	}
	if in.Y != nil {
		it.Y = *in.Y
	}
	if in.Meta != nil {
		it.Meta = in.Meta
	}
	if it.RefID != "" && it.RefModel == "" {
		return validationError("ref_model is required when ref_id is provided.").
			WithDetail("ref_model", "This field is required.")
	}
	return nil
}

// BoardLinkInput strings two pins of the same board together
type BoardLinkInput struct {
	SourceID string                 `json:"source_id"`
	TargetID string                 `json:"target_id"`
	Label    string                 `json:"label"`
	Meta     map[string]interface{} `json:"meta"`
}

// Board returns the case's board, creating an empty one owned by actor on
// first use
func (s *BoardService) Board(ctx context.Context, actor *models.Actor, caseID string) (*models.DetectiveBoard, error) {
	if err := requireRole(actor, boardEditors...); err != nil {
		return nil, err
	}
	return s.board(ctx, actor, caseID)
}

func (s *BoardService) board(ctx context.Context, actor *models.Actor, caseID string) (*models.DetectiveBoard, error) {
	oid, err := parseID(caseID, "Case")
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Cases.FindByID(ctx, oid); err != nil {
		return nil, fromStore(err, "Case")
	}
	hex := oid.Hex()
	b, err := s.stores.Boards.FindByCase(ctx, hex)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, databases.ErrNotFound) {
		return nil, fromStore(err, "Detective board")
	}

	now := s.now()
	b = &models.DetectiveBoard{Details: models.DetectiveBoardDetails{
		CaseID:    hex,
		CreatedBy: actor.ID,
		Items:     []models.BoardItem{},
		Links:     []models.BoardLink{},
		CreatedAt: now,
		UpdatedAt: now,
	}}
	err = s.stores.Boards.Insert(ctx, b)
	if errors.Is(err, databases.ErrDuplicate) {
		// another request created it first
		b, err = s.stores.Boards.FindByCase(ctx, hex)
	}
	if err != nil {
		return nil, fromStore(err, "Detective board")
	}
	return b, nil
}

// edit loads the case's board, lets change mutate it and stores the result
func (s *BoardService) edit(ctx context.Context, actor *models.Actor, caseID string, change func(b *models.DetectiveBoard) error) (*models.DetectiveBoard, error) {
	if err := requireRole(actor, boardEditors...); err != nil {
		return nil, err
	}
	b, err := s.board(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	if err := change(b); err != nil {
		return nil, err
	}
	b.Details.UpdatedAt = s.now()
	if err := s.stores.Boards.Update(ctx, b); err != nil {
		return nil, fromStore(err, "Detective board")
	}
	return b, nil
}

// AddItem pins a new item to the case's board
func (s *BoardService) AddItem(ctx context.Context, actor *models.Actor, caseID string, in BoardItemInput) (*models.BoardItem, error) {
	var item models.BoardItem
	_, err := s.edit(ctx, actor, caseID, func(b *models.DetectiveBoard) error {
		now := s.now()
		item = models.BoardItem{
			ID:        primitive.NewObjectID(),
			Type:      models.BoardNote,
			CreatedBy: actor.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := in.apply(&item); err != nil {
			return err
		}
		b.Details.Items = append(b.Details.Items, item)
		return nil
	})
	if err != nil {
		return nil, s.record(boardWorkflow, "add_item", err)
	}
	return &item, s.record(boardWorkflow, "add_item", nil)
}

// UpdateItem patches a pin on the case's board
func (s *BoardService) UpdateItem(ctx context.Context, actor *models.Actor, caseID, itemID string, in BoardItemInput) (*models.BoardItem, error) {
	var item models.BoardItem
	_, err := s.edit(ctx, actor, caseID, func(b *models.DetectiveBoard) error {
		if in.empty() {
			return validationError("Nothing to update.")
		}
		i, err := boardItem(b, itemID)
		if err != nil {
			return err
		}
		item = b.Details.Items[i]
		if err := in.apply(&item); err != nil {
			return err
		}
		item.UpdatedAt = s.now()
		b.Details.Items[i] = item
		return nil
	})
	if err != nil {
		return nil, s.record(boardWorkflow, "update_item", err)
	}
	return &item, s.record(boardWorkflow, "update_item", nil)
}

// DeleteItem unpins an item and cuts every string attached to it
func (s *BoardService) DeleteItem(ctx context.Context, actor *models.Actor, caseID, itemID string) error {
	_, err := s.edit(ctx, actor, caseID, func(b *models.DetectiveBoard) error {
		i, err := boardItem(b, itemID)
		if err != nil {
			return err
		}
		b.RemoveItem(b.Details.Items[i].ID)
		return nil
	})
	return s.record(boardWorkflow, "delete_item", err)
}

// AddLink strings two pins of the case's board together
func (s *BoardService) AddLink(ctx context.Context, actor *models.Actor, caseID string, in BoardLinkInput) (*models.BoardLink, error) {
	var link models.BoardLink
	_, err := s.edit(ctx, actor, caseID, func(b *models.DetectiveBoard) error {
		src, err := linkEnd(b, "source_id", in.SourceID)
		if err != nil {
			return err
		}
		dst, err := linkEnd(b, "target_id", in.TargetID)
		if err != nil {
			return err
		}
		link = models.BoardLink{
			ID:        primitive.NewObjectID(),
			SourceID:  src,
			TargetID:  dst,
			Label:     strings.TrimSpace(in.Label),
			Meta:      in.Meta,
			CreatedBy: actor.ID,
			CreatedAt: s.now(),
		}
		b.Details.Links = append(b.Details.Links, link)
		return nil
	})
	if err != nil {
		return nil, s.record(boardWorkflow, "add_link", err)
	}
	return &link, s.record(boardWorkflow, "add_link", nil)
}

// DeleteLink cuts a string on the case's board
func (s *BoardService) DeleteLink(ctx context.Context, actor *models.Actor, caseID, linkID string) error {
	_, err := s.edit(ctx, actor, caseID, func(b *models.DetectiveBoard) error {
		oid, err := parseID(linkID, "Link")
		if err != nil {
			return err
		}
		i := b.Link(oid)
		if i < 0 {
			return notFound("Link")
		}
		b.Details.Links = append(b.Details.Links[:i], b.Details.Links[i+1:]...)
		return nil
	})
	return s.record(boardWorkflow, "delete_link", err)
}

func boardItem(b *models.DetectiveBoard, itemID string) (int, error) {
	oid, err := parseID(itemID, "Item")
	if err != nil {
		return -1, err
	}
	i := b.Item(oid)
	if i < 0 {
		return -1, notFound("Item")
	}
	return i, nil
}

// linkEnd resolves one end of a link. A pin of another board is a bad
// request, not a missing record.
func linkEnd(b *models.DetectiveBoard, field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil || b.Item(oid) < 0 {
		return primitive.NilObjectID, validationError("Invalid %s for this board.", field).WithDetail(field, id)
	}
	return oid, nil
}
