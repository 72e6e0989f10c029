package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
)

// SubscriptionUsecase resolves what a startup's plan allows.
type SubscriptionUsecase interface {
	Plans() []plan.Capabilities
	Capabilities(ctx context.Context, startupID string) (plan.Capabilities, error)
	SetTier(ctx context.Context, startupID string, tier plan.Tier) (*model.Subscription, error)
}

type subscriptionUsecase struct {
	subscriptionRepo repository.SubscriptionRepository
	logger           *zerolog.Logger
}

func NewSubscriptionUsecase(
	subscriptionRepo repository.SubscriptionRepository,
	logger *zerolog.Logger,
) SubscriptionUsecase {
	return &subscriptionUsecase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (u *subscriptionUsecase) Plans() []plan.Capabilities {
	return plan.All()
}

func (u *subscriptionUsecase) Capabilities(ctx context.Context, startupID string) (plan.Capabilities, error) {
	subscription, err := u.subscriptionRepo.GetSubscription(ctx, startupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return plan.For(plan.TierFree), nil
		}
		return plan.Capabilities{}, err
	}

	return plan.For(subscription.Tier), nil
}

func (u *subscriptionUsecase) SetTier(
	ctx context.Context,
	startupID string,
	tier plan.Tier,
) (*model.Subscription, error) {
	subscription, err := u.subscriptionRepo.UpsertSubscription(ctx, startupID, tier)
	if err != nil {
		return nil, err
	}

	u.logger.Info().Str("startup_id", startupID).Str("tier", string(tier)).Msg("subscription updated")
	return subscription, nil
}
