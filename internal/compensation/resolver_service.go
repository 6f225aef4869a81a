package compensation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.uber.org/zap"
)

// ResolveTarget identifies who we are resolving pay for. FullName feeds the
// case-insensitive applicant match when no direct link exists.
type ResolveTarget struct {
	EmployeeID string
	FullName   string
}

//go:generate mockgen -source=resolver_service.go -destination=mock/resolver_service_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, companyID string, target ResolveTarget) ResolvedCompensation
}

type resolver struct {
	repo   Repository
	logger *zap.Logger
}

func NewResolver(repo Repository, logger *zap.Logger) Resolver {
	if logger == nil {
		logger = zap.L()
	}
	return &resolver{repo: repo, logger: logger.Named("compensation.resolver")}
}

// Resolve walks the ranked source ladder and returns the first usable
// compensation, falling through to a synthetic zero record. It never returns
// an absent value and never fails: a malformed or missing source is logged
// and the next rung is tried.
//
// Ladder: active structured record -> snapshot assigned on the employee ->
// applicant (by employee id, then case-insensitive name) snapshot ->
// applicant legacy embedded snapshot -> global structure by candidate id ->
// zero fallback.
func (r *resolver) Resolve(ctx context.Context, companyID string, target ResolveTarget) ResolvedCompensation {
	log := r.logger.With(
		zap.String("company_id", companyID),
		zap.String("employee_id", target.EmployeeID),
	)

	if rc, ok := r.fromStructure(ctx, companyID, target, log); ok {
		return finalize(rc)
	}
	if rc, ok := r.fromAssignedSnapshot(ctx, companyID, target, log); ok {
		return finalize(rc)
	}

	applicant := r.findApplicant(ctx, companyID, target, log)
	if applicant != nil {
		if rc, ok := r.fromApplicantSnapshot(ctx, applicant, log); ok {
			return finalize(rc)
		}
		if rc, ok := r.fromLegacyEmbedded(applicant, log); ok {
			return finalize(rc)
		}
		if rc, ok := r.fromGlobalStructure(ctx, applicant, log); ok {
			return finalize(rc)
		}
	}

	log.Warn("no compensation source usable, using zero fallback")
	return finalize(ZeroFallback())
}

func finalize(rc ResolvedCompensation) ResolvedCompensation {
	EnsureGrossTotals(&rc)
	return rc
}

func (r *resolver) fromStructure(ctx context.Context, companyID string, target ResolveTarget, log *zap.Logger) (ResolvedCompensation, bool) {
	structure, err := r.repo.FindActiveStructure(ctx, companyID, target.EmployeeID)
	if err != nil {
		logSourceMiss(log, SourceStructured, err)
		return ResolvedCompensation{}, false
	}

	rc := AdaptStructure(structure)
	return rc, rc.Usable()
}

func (r *resolver) fromAssignedSnapshot(ctx context.Context, companyID string, target ResolveTarget, log *zap.Logger) (ResolvedCompensation, bool) {
	payload, err := r.repo.FindEmployeeSnapshot(ctx, companyID, target.EmployeeID)
	if err != nil {
		logSourceMiss(log, SourceAssignedSnapshot, err)
		return ResolvedCompensation{}, false
	}

	rc, err := AdaptSnapshot(payload, SourceAssignedSnapshot)
	if err != nil {
		logSourceMiss(log, SourceAssignedSnapshot, err)
		return ResolvedCompensation{}, false
	}
	return rc, rc.Usable()
}

func (r *resolver) findApplicant(ctx context.Context, companyID string, target ResolveTarget, log *zap.Logger) *Applicant {
	applicant, err := r.repo.FindApplicantByEmployee(ctx, companyID, target.EmployeeID)
	if err == nil {
		return applicant
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug("applicant lookup by employee failed", zap.Error(err))
	}

	if target.FullName == "" {
		return nil
	}
	applicant, err = r.repo.FindApplicantByName(ctx, companyID, target.FullName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("applicant lookup by name failed", zap.Error(err))
		}
		return nil
	}
	return applicant
}

func (r *resolver) fromApplicantSnapshot(ctx context.Context, applicant *Applicant, log *zap.Logger) (ResolvedCompensation, bool) {
	if applicant.SnapshotID == nil {
		return ResolvedCompensation{}, false
	}

	payload, err := r.repo.FindSnapshotPayload(ctx, applicant.SnapshotID.String())
	if err != nil {
		logSourceMiss(log, SourceApplicantSnapshot, err)
		return ResolvedCompensation{}, false
	}

	rc, err := AdaptSnapshot(payload, SourceApplicantSnapshot)
	if err != nil {
		logSourceMiss(log, SourceApplicantSnapshot, err)
		return ResolvedCompensation{}, false
	}
	return rc, rc.Usable()
}

func (r *resolver) fromLegacyEmbedded(applicant *Applicant, log *zap.Logger) (ResolvedCompensation, bool) {
	rc, err := AdaptSnapshot(applicant.LegacySnapshot, SourceLegacyEmbedded)
	if err != nil {
		if !errors.Is(err, errEmptySnapshot) {
			logSourceMiss(log, SourceLegacyEmbedded, err)
		}
		return ResolvedCompensation{}, false
	}
	return rc, rc.Usable()
}

func (r *resolver) fromGlobalStructure(ctx context.Context, applicant *Applicant, log *zap.Logger) (ResolvedCompensation, bool) {
	if applicant.CandidateID == nil {
		return ResolvedCompensation{}, false
	}

	structure, err := r.repo.FindGlobalStructureByCandidate(ctx, applicant.CandidateID.String())
	if err != nil {
		logSourceMiss(log, SourceGlobalStructure, err)
		return ResolvedCompensation{}, false
	}

	rc, err := AdaptGlobalStructure(structure)
	if err != nil {
		logSourceMiss(log, SourceGlobalStructure, err)
		return ResolvedCompensation{}, false
	}
	return rc, rc.Usable()
}

func logSourceMiss(log *zap.Logger, source string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug("compensation source empty", zap.String("source", source))
		return
	}
	log.Debug("compensation source skipped",
		zap.String("source", source),
		zap.Error(err),
	)
}
