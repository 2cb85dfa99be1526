package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/storage"
	"stockledger/internal/domain/catalogs/variant"
	"stockledger/pkg/logger"
)

var tracer = otel.Tracer("stockledger/ledger")

// Service is the projection engine's outbound surface.
// Stateless: every call is an independent read-only recomputation, so
// arbitrarily many invocations may run concurrently without coordination.
type Service struct {
	ledger   Repository
	variants variant.Repository
	storages storage.Repository
}

// NewService creates a new projection service.
func NewService(ledger Repository, variants variant.Repository, storages storage.Repository) *Service {
	return &Service{
		ledger:   ledger,
		variants: variants,
		storages: storages,
	}
}

// GetProjection computes the full per-variant stock projection.
func (s *Service) GetProjection(ctx context.Context, filter ProjectionFilter) ([]Row, error) {
	ctx, span := tracer.Start(ctx, "ledger.projection")
	defer span.End()

	// Eligibility is selected first and capped so the cap bounds total work
	// predictably regardless of ledger size.
	variants, err := s.variants.ListEligible(ctx, variant.Selection{
		Search: filter.Search,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list eligible variants: %w", err)
	}
	if len(variants) == 0 {
		return []Row{}, nil
	}

	var branchStorageIDs map[id.ID]struct{}
	var scanStorageIDs []id.ID

	if filter.BranchID != nil {
		branchStorages, err := s.storages.ListByBranch(ctx, *filter.BranchID)
		if err != nil {
			return nil, fmt.Errorf("resolve branch storages: %w", err)
		}
		// A branch with zero storages yields an empty projection, never a
		// fallback to "all storages".
		if len(branchStorages) == 0 {
			return []Row{}, nil
		}
		branchStorageIDs = make(map[id.ID]struct{}, len(branchStorages))
		for _, st := range branchStorages {
			branchStorageIDs[st.ID] = struct{}{}
			scanStorageIDs = append(scanStorageIDs, st.ID)
		}
	}

	if filter.StorageID != nil {
		scanStorageIDs = []id.ID{*filter.StorageID}
	}

	variantIDs := make([]id.ID, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}

	lines, err := s.ledger.ScanLines(ctx, LineFilter{
		VariantIDs: variantIDs,
		StorageIDs: scanStorageIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("scan ledger lines: %w", err)
	}

	s.logUnknownTypes(ctx, lines)

	rows := Build(variants, lines, BuildOptions{
		IncludeZero:      filter.IncludeZeroResolved(),
		BranchStorageIDs: branchStorageIDs,
	})

	span.SetAttributes(
		attribute.Int("ledger.lines", len(lines)),
		attribute.Int("ledger.rows", len(rows)),
	)

	logger.Debug(ctx, "projection computed",
		"variants", len(variants),
		"lines", len(lines),
		"rows", len(rows),
	)

	return rows, nil
}

// GetBalances answers "how much is available here, right now" for one storage.
// Variants absent from the result map are implicitly zero. For any storage and
// variant the number equals the storage's breakdown entry in the full
// projection over the same ledger snapshot.
func (s *Service) GetBalances(ctx context.Context, storageID id.ID, variantIDs []id.ID) (map[id.ID]decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "ledger.balances")
	defer span.End()

	if id.IsNil(storageID) {
		return nil, apperror.NewValidation("storageId is required")
	}
	if len(variantIDs) == 0 {
		return map[id.ID]decimal.Decimal{}, nil
	}

	balances, err := s.ledger.SumBalances(ctx, storageID, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}

	span.SetAttributes(attribute.Int("ledger.balances", len(balances)))
	return balances, nil
}

// GetFilters returns the reference data for building filter controls.
func (s *Service) GetFilters(ctx context.Context) (Filters, error) {
	branches, err := s.storages.ListBranches(ctx)
	if err != nil {
		return Filters{}, fmt.Errorf("list branches: %w", err)
	}

	storages, err := s.storages.List(ctx)
	if err != nil {
		return Filters{}, fmt.Errorf("list storages: %w", err)
	}

	if branches == nil {
		branches = []storage.Branch{}
	}
	if storages == nil {
		storages = []storage.Storage{}
	}

	return Filters{Branches: branches, Storages: storages}, nil
}

// logUnknownTypes reports, once per call, transaction types outside the known
// enumeration. They classify as NONE and never move stock; this is the only
// place they surface at all.
func (s *Service) logUnknownTypes(ctx context.Context, lines []Line) {
	var seen map[TransactionType]struct{}
	for _, line := range lines {
		if IsKnown(line.TransactionType) {
			continue
		}
		if seen == nil {
			seen = make(map[TransactionType]struct{})
		}
		if _, ok := seen[line.TransactionType]; ok {
			continue
		}
		seen[line.TransactionType] = struct{}{}
		logger.Debug(ctx, "unknown transaction type ignored",
			"transaction_type", string(line.TransactionType),
		)
	}
}
