package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gridline/gridline/backend-go/internal/document"
	"github.com/gridline/gridline/backend-go/internal/store"
	"github.com/gridline/gridline/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a project member")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create makes a project, adds the owner as a member, and writes the
// first snapshot (an empty diagram document).
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	dbProj, err := s.store.CreateProject(ctx, projectID, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if err := s.store.AddMember(ctx, projectID, ownerID, "owner"); err != nil {
		return nil, fmt.Errorf("add owner member: %w", err)
	}

	doc := document.NewEmptyDocument(typeid.NewDiagramID(), name)
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal initial document: %w", err)
	}
	if _, err := s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	}); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return toProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Project, error) {
	dbProjects, err := s.store.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]*Project, 0, len(dbProjects))
	for _, p := range dbProjects {
		out = append(out, toProject(p))
	}
	return out, nil
}

// Delete removes a project. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}
	if dbProj.OwnerID != userID {
		return ErrForbidden
	}
	return s.store.DeleteProject(ctx, projectID)
}

// Invite adds an existing user (by email) as an editor.
func (s *Service) Invite(ctx context.Context, projectID, userID, email string) (*Member, error) {
	if err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	invitee, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no user with email %q: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("get invitee: %w", err)
	}

	if err := s.store.AddMember(ctx, projectID, invitee.ID, "editor"); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	return &Member{
		UserID:      invitee.ID,
		Role:        "editor",
		DisplayName: invitee.DisplayName,
		Email:       invitee.Email,
	}, nil
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]*Member, error) {
	if err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.store.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]*Member, 0, len(dbMembers))
	for _, m := range dbMembers {
		out = append(out, &Member{
			UserID:      m.UserID,
			Role:        m.Role,
			DisplayName: m.DisplayName,
			Email:       m.Email,
		})
	}
	return out, nil
}

// RemoveMember removes a member. Only the owner may remove others; any
// member may remove themselves.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID, targetUserID string) error {
	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}
	if userID != targetUserID && dbProj.OwnerID != userID {
		return ErrForbidden
	}
	if targetUserID == dbProj.OwnerID {
		return ErrForbidden
	}
	return s.store.RemoveMember(ctx, projectID, targetUserID)
}

// AppendSnapshot writes the next document version for a project. There
// is no membership check: the collaboration hub saves on behalf of a
// room whose members were checked at join time.
func (s *Service) AppendSnapshot(ctx context.Context, projectID string, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return errors.New("document is not valid JSON")
	}

	version := int32(1)
	current, err := s.store.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		version = current.Version + 1
	case errors.Is(err, store.ErrNotFound):
	default:
		return fmt.Errorf("get latest snapshot: %w", err)
	}

	if _, err := s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   version,
		Document:  doc,
	}); err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

// SaveSnapshot is the member-facing variant of AppendSnapshot, used by
// the explicit save endpoint.
func (s *Service) SaveSnapshot(ctx context.Context, projectID, userID string, doc json.RawMessage) error {
	if err := s.requireMember(ctx, projectID, userID); err != nil {
		return err
	}
	return s.AppendSnapshot(ctx, projectID, doc)
}

// GetLatestSnapshot returns the newest document snapshot.
func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap.Document, nil
}

func (s *Service) requireMember(ctx context.Context, projectID, userID string) error {
	_, err := s.store.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("get member: %w", err)
	}
	return nil
}

func toProject(p store.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
