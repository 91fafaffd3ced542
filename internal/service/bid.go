package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"districtops/internal/apperr"
	"districtops/internal/bidscore"
	"districtops/internal/model"
	"districtops/internal/repository"
)

// RankedResponse is a bid response with its position and score breakdown.
type RankedResponse struct {
	Rank int `json:"rank"`
	model.BidResponse
	Components bidscore.Components `json:"components"`
}

// BidService runs solicitations and scores the responses they receive.
type BidService interface {
	// CreateSolicitation stores a draft solicitation.
	CreateSolicitation(ctx context.Context, districtID string, sol model.BidSolicitation) (*model.BidSolicitation, error)
	GetSolicitation(ctx context.Context, id string) (*model.BidSolicitation, error)

	// AdvanceSolicitation moves draft->open->closed one step at a time. A
	// solicitation only becomes awarded through SetResponseStatus.
	AdvanceSolicitation(ctx context.Context, id string, to model.SolicitationStatus) (*model.BidSolicitation, error)

	// SubmitResponse scores and stores a response while the solicitation is open.
	SubmitResponse(ctx context.Context, solicitationID string, resp model.BidResponse) (*model.BidResponse, error)

	// RankResponses orders responses by score; earlier submissions win ties.
	RankResponses(ctx context.Context, solicitationID string) ([]RankedResponse, error)

	// SetResponseStatus shortlists, rejects or awards a response. Awarding
	// also awards the closed solicitation in the same write.
	SetResponseStatus(ctx context.Context, solicitationID, responseID string, status model.BidResponseStatus) (*model.BidResponse, error)
}

type bidService struct {
	repo          repository.BidRepository
	scorer        *bidscore.Scorer
	referenceRate float64
	now           func() time.Time
}

// NewBidService constructs a BidService. referenceRate prices responses to
// solicitations that do not carry their own reference rate.
func NewBidService(repo repository.BidRepository, scorer *bidscore.Scorer, referenceRate float64) BidService {
	return &bidService{repo: repo, scorer: scorer, referenceRate: referenceRate, now: utcNow}
}

func (s *bidService) CreateSolicitation(ctx context.Context, districtID string, sol model.BidSolicitation) (*model.BidSolicitation, error) {
	ctx, span := tracer.Start(ctx, "bid.CreateSolicitation")
	defer span.End()

	sol.DistrictID = districtID
	if err := firstErr(
		required("district_id", sol.DistrictID),
		required("title", sol.Title),
		nonNegative("reference_rate", sol.ReferenceRate),
	); err != nil {
		return nil, fail(span, err)
	}
	if !sol.OpenDate.IsZero() && !sol.CloseDate.IsZero() && !sol.CloseDate.After(sol.OpenDate) {
		return nil, fail(span, apperr.Validation("close_date must be after open_date"))
	}

	sol.ID = newID()
	sol.Status = model.SolicitationDraft
	sol.CreatedAt = s.now()
	if err := s.repo.CreateSolicitation(ctx, &sol); err != nil {
		return nil, fail(span, translate(err, "bid_solicitation", sol.ID, "create"))
	}
	span.SetAttributes(attribute.String("solicitation.id", sol.ID))
	return &sol, nil
}

func (s *bidService) GetSolicitation(ctx context.Context, id string) (*model.BidSolicitation, error) {
	sol, err := s.repo.FindSolicitation(ctx, id)
	if err != nil {
		return nil, translate(err, "bid_solicitation", id, "load")
	}
	return sol, nil
}

func (s *bidService) AdvanceSolicitation(ctx context.Context, id string, to model.SolicitationStatus) (*model.BidSolicitation, error) {
	ctx, span := tracer.Start(ctx, "bid.AdvanceSolicitation")
	defer span.End()

	sol, err := s.GetSolicitation(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if to == model.SolicitationAwarded || !sol.Status.CanAdvanceTo(to) {
		return nil, fail(span, apperr.InvalidTransition("bid_solicitation", id, string(sol.Status), "move to "+string(to)))
	}
	if err := s.repo.UpdateSolicitationStatus(ctx, id, sol.Status, to); err != nil {
		return nil, fail(span, translate(err, "bid_solicitation", id, "update"))
	}
	sol.Status = to
	return sol, nil
}

func (s *bidService) SubmitResponse(ctx context.Context, solicitationID string, resp model.BidResponse) (*model.BidResponse, error) {
	ctx, span := tracer.Start(ctx, "bid.SubmitResponse")
	defer span.End()

	if err := firstErr(
		required("contractor_name", resp.ContractorName),
		nonNegative("proposed_rate", resp.ProposedRate),
	); err != nil {
		return nil, fail(span, err)
	}
	sol, err := s.GetSolicitation(ctx, solicitationID)
	if err != nil {
		return nil, fail(span, err)
	}
	if sol.Status != model.SolicitationOpen {
		return nil, fail(span, apperr.InvalidTransition("bid_solicitation", sol.ID, string(sol.Status), "respond to"))
	}

	resp.ID = newID()
	resp.SolicitationID = sol.ID
	resp.Status = model.BidSubmitted
	resp.SubmittedAt = s.now()
	resp.TotalScore = s.scorer.Score(resp, s.reference(sol))
	if err := s.repo.CreateResponse(ctx, &resp); err != nil {
		return nil, fail(span, translate(err, "bid_response", resp.ID, "create"))
	}
	span.SetAttributes(attribute.Float64("bid.score", resp.TotalScore))
	return &resp, nil
}

func (s *bidService) reference(sol *model.BidSolicitation) float64 {
	if sol.ReferenceRate > 0 {
		return sol.ReferenceRate
	}
	return s.referenceRate
}

func (s *bidService) RankResponses(ctx context.Context, solicitationID string) ([]RankedResponse, error) {
	sol, err := s.GetSolicitation(ctx, solicitationID)
	if err != nil {
		return nil, err
	}
	resps, err := s.repo.ListResponses(ctx, solicitationID)
	if err != nil {
		return nil, translate(err, "bid_solicitation", solicitationID, "list responses for")
	}
	ranked := bidscore.Rank(resps)
	out := make([]RankedResponse, len(ranked))
	for i, r := range ranked {
		out[i] = RankedResponse{Rank: i + 1, BidResponse: r, Components: bidscore.Breakdown(r, s.reference(sol))}
	}
	return out, nil
}

func (s *bidService) SetResponseStatus(ctx context.Context, solicitationID, responseID string, status model.BidResponseStatus) (*model.BidResponse, error) {
	ctx, span := tracer.Start(ctx, "bid.SetResponseStatus")
	defer span.End()

	switch status {
	case model.BidShortlisted, model.BidRejected, model.BidAwarded:
	default:
		return nil, fail(span, apperr.Validation("status must be shortlisted, rejected or awarded"))
	}
	resp, err := s.repo.FindResponse(ctx, responseID)
	if err != nil {
		return nil, fail(span, translate(err, "bid_response", responseID, "load"))
	}
	if resp.SolicitationID != solicitationID {
		return nil, fail(span, apperr.NotFound("bid_response", responseID))
	}
	if resp.Status == model.BidAwarded {
		return nil, fail(span, apperr.InvalidTransition("bid_response", responseID, string(resp.Status), "mark "+string(status)))
	}

	if status == model.BidAwarded {
		err := s.repo.Award(ctx, solicitationID, responseID)
		if errors.Is(err, repository.ErrConflict) {
			sol, ferr := s.GetSolicitation(ctx, solicitationID)
			if ferr != nil {
				return nil, fail(span, ferr)
			}
			return nil, fail(span, apperr.InvalidTransition("bid_solicitation", solicitationID, string(sol.Status), "award"))
		}
		if err != nil {
			return nil, fail(span, translate(err, "bid_solicitation", solicitationID, "award"))
		}
	} else if err := s.repo.UpdateResponseStatus(ctx, responseID, status); err != nil {
		return nil, fail(span, translate(err, "bid_response", responseID, "update"))
	}
	resp.Status = status
	return resp, nil
}
