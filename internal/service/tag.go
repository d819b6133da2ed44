package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

const maxTagNameLen = 64

// TagUpdate holds the fields to change; nil leaves a field as is.
type TagUpdate struct {
	Name  *string
	Color *string
}

// TagService manages the per-user tag palette. Tags here are independent of the free-text tags on files.
type TagService interface {
	List(ctx context.Context, userID string) ([]model.Tag, error)
	Create(ctx context.Context, userID, name, color string) (*model.Tag, error)
	Update(ctx context.Context, id, userID string, in TagUpdate) (*model.Tag, error)
	Delete(ctx context.Context, id, userID string) error
}

type tagService struct {
	repo repository.TagRepository
	now  func() time.Time
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo, now: time.Now}
}

func (s *tagService) List(ctx context.Context, userID string) ([]model.Tag, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *tagService) Create(ctx context.Context, userID, name, color string) (*model.Tag, error) {
	name, color, err := checkTag(name, color)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t, err := s.repo.Create(ctx, &model.Tag{
		ID:        newID(),
		Name:      name,
		Color:     color,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflictf("tag %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

func (s *tagService) Update(ctx context.Context, id, userID string, in TagUpdate) (*model.Tag, error) {
	if !isUUID(id) {
		return nil, notFound("tag")
	}
	tags, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var current *model.Tag
	for i := range tags {
		if tags[i].ID == id {
			current = &tags[i]
			break
		}
	}
	if current == nil {
		return nil, notFound("tag")
	}

	name, color := current.Name, current.Color
	if in.Name != nil {
		name = *in.Name
	}
	if in.Color != nil {
		color = *in.Color
	}
	name, color, err = checkTag(name, color)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Update(ctx, &model.Tag{ID: id, UserID: userID, Name: name, Color: color})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflictf("tag %q already exists", name)
	}
	if err != nil {
		return nil, mapNotFound(err, "tag")
	}
	return t, nil
}

func (s *tagService) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) {
		return notFound("tag")
	}
	return mapNotFound(s.repo.Delete(ctx, id, userID), "tag")
}

func checkTag(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxTagNameLen {
		return "", "", validationf("tag name must be 1 to %d characters", maxTagNameLen)
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.DefaultTagColor
	}
	if err := validate.Var(color, "hexcolor,len=7"); err != nil {
		return "", "", validationf("color must look like #RRGGBB")
	}
	return name, color, nil
}
