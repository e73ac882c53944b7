package ingest

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/graph"
	"github.com/lumenlearn/mastery-engine/internal/mastery"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// Mastery updates fire only for strong evidence: high completion or an
// explicit completed interaction. Weaker signals are recorded but stay out
// of the fusion pipeline so passive browsing stays cheap.
const fusionCompletionThreshold = 50.0

// InteractionInput is the raw ingestion payload before validation. The
// timestamp arrives as a string because rejecting an unparsable value is
// part of the validation contract.
type InteractionInput struct {
	UserID               string   `json:"user_id"`
	ContentID            string   `json:"content_id"`
	InteractionType      string   `json:"interaction_type"`
	ContentTags          []string `json:"content_tags"`
	ContentFormat        string   `json:"content_format"`
	ContentDifficulty    string   `json:"content_difficulty"`
	DurationSeconds      int      `json:"duration_seconds"`
	CompletionPercentage float64  `json:"completion_percentage"`
	Rating               *float64 `json:"rating"`
	Timestamp            string   `json:"timestamp"`
}

// Service validates and records interaction events, then drives the
// evidence-fusion pipeline for events strong enough to matter.
type Service interface {
	Ingest(ctx context.Context, in *InteractionInput) (*domain.IngestResult, error)
}

type service struct {
	eventRepo repos.InteractionEventRepo
	gateway   graph.Gateway
	resolver  *concepts.Resolver
	mastery   mastery.Service
	log       *logger.Logger
}

func NewService(eventRepo repos.InteractionEventRepo, gateway graph.Gateway, resolver *concepts.Resolver, masterySvc mastery.Service, baseLog *logger.Logger) Service {
	return &service{
		eventRepo: eventRepo,
		gateway:   gateway,
		resolver:  resolver,
		mastery:   masterySvc,
		log:       baseLog.With("service", "IngestService"),
	}
}

// Ingest rejects malformed input before any write. On acceptance the event
// is appended to the log; if it crosses the fusion threshold, tags are
// resolved against the concept catalog and the passive mastery channel runs
// for each match. Tags that resolve to nothing are dropped silently.
func (s *service) Ingest(ctx context.Context, in *InteractionInput) (*domain.IngestResult, error) {
	ev, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	// Resolve concepts before the append so a dead graph store fails the
	// call without committing anything.
	var conceptIDs []string
	if s.shouldFuse(ev) && len(in.ContentTags) > 0 {
		catalog, err := s.gateway.ConceptCatalog(ctx)
		if err != nil {
			return nil, err
		}
		conceptIDs = s.resolver.Resolve(in.ContentTags, catalog)
		if len(conceptIDs) == 0 {
			s.log.Warn("no tags resolved to catalog concepts",
				"user_id", ev.UserID.String(), "tags", strings.Join(in.ContentTags, ","))
		}
	}

	if _, err := s.eventRepo.Create(ctx, nil, []*domain.InteractionEvent{ev}); err != nil {
		return nil, err
	}

	updated := []string{}
	if len(conceptIDs) > 0 {
		updated, err = s.mastery.ApplyInteraction(ctx, ev.UserID, conceptIDs, ev)
		if err != nil {
			return nil, err
		}
	}

	return &domain.IngestResult{
		Accepted:        true,
		ConceptsUpdated: updated,
	}, nil
}

func (s *service) validate(in *InteractionInput) (*domain.InteractionEvent, error) {
	const op = "IngestService.Ingest"
	if in == nil {
		return nil, domain.NewError(domain.CodeValidation, op, "missing payload", nil)
	}

	userID, err := uuid.Parse(strings.TrimSpace(in.UserID))
	if err != nil || userID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "missing or invalid user_id", err)
	}
	if strings.TrimSpace(in.ContentID) == "" {
		return nil, domain.NewError(domain.CodeValidation, op, "missing content_id", nil)
	}
	if !domain.ValidInteractionType(in.InteractionType) {
		return nil, domain.NewError(domain.CodeValidation, op, "unknown interaction_type: "+in.InteractionType, nil)
	}
	if in.CompletionPercentage < 0 || in.CompletionPercentage > 100 {
		return nil, domain.NewError(domain.CodeValidation, op, "completion_percentage outside [0,100]", nil)
	}
	occurredAt, err := time.Parse(time.RFC3339, strings.TrimSpace(in.Timestamp))
	if err != nil {
		return nil, domain.NewError(domain.CodeValidation, op, "unparsable timestamp", err)
	}

	var tags datatypes.JSON
	if len(in.ContentTags) > 0 {
		raw, err := json.Marshal(in.ContentTags)
		if err != nil {
			return nil, domain.NewError(domain.CodeValidation, op, "unencodable content_tags", err)
		}
		tags = datatypes.JSON(raw)
	}

	return &domain.InteractionEvent{
		UserID:               userID,
		ContentID:            strings.TrimSpace(in.ContentID),
		InteractionType:      in.InteractionType,
		ContentTags:          tags,
		ContentFormat:        strings.TrimSpace(in.ContentFormat),
		ContentDifficulty:    strings.TrimSpace(in.ContentDifficulty),
		DurationSeconds:      in.DurationSeconds,
		CompletionPercentage: in.CompletionPercentage,
		Rating:               in.Rating,
		OccurredAt:           occurredAt.UTC(),
	}, nil
}

func (s *service) shouldFuse(ev *domain.InteractionEvent) bool {
	return ev.CompletionPercentage >= fusionCompletionThreshold ||
		ev.InteractionType == domain.InteractionCompleted
}
