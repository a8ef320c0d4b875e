package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"property-marketplace/internal/auth"
	domainProperty "property-marketplace/internal/domain/property"
	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	"property-marketplace/internal/notification"
	appErrors "property-marketplace/pkg/errors"
	"property-marketplace/pkg/utils"
)

// Service implements listing use cases. Every mutating call receives the
// already authenticated actor.
type Service struct {
	propertyRepo domainProperty.Repository
	userRepo     domainUser.Repository
	notifier     notification.InterestPublisher
}

func NewService(
	propertyRepo domainProperty.Repository,
	userRepo domainUser.Repository,
	notifier notification.InterestPublisher,
) *Service {
	if notifier == nil {
		notifier = notification.NopPublisher{}
	}
	return &Service{
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

func (s *Service) Create(ctx context.Context, actor *domainUser.User, req *CreatePropertyRequest) (*PropertyResponse, error) {
	if err := auth.AuthorizeCreateListing(actor); err != nil {
		logForbidden("create", actor, 0)
		return nil, err
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	listing := &domainProperty.Property{
		OwnerID:        actor.ID,
		Title:          req.Title,
		Description:    req.Description,
		Place:          req.Place,
		Area:           req.Area,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		HospitalNearby: req.HospitalNearby,
		SchoolNearby:   req.SchoolNearby,
		Price:          req.Price,
	}

	if err := s.propertyRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	logger.Info("Property listed",
		zap.Int64("property_id", listing.ID),
		zap.Int64("owner_id", listing.OwnerID),
		zap.String("event", "listing_created"),
	)

	return ToPropertyResponse(listing), nil
}

func (s *Service) List(ctx context.Context, req *ListPropertiesRequest) (*PropertyListResponse, error) {
	skip, limit := normalizePage(req.Skip, req.Limit)

	listings, err := s.propertyRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	responses := make([]*PropertyResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, ToPropertyResponse(listing))
	}

	return &PropertyListResponse{
		Properties: responses,
		Skip:       skip,
		Limit:      limit,
	}, nil
}

func (s *Service) Get(ctx context.Context, propertyID int64) (*PropertyResponse, error) {
	listing, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return ToPropertyResponse(listing), nil
}

// Update loads the listing before evaluating ownership, so a missing
// listing is reported as not found to everyone.
func (s *Service) Update(ctx context.Context, actor *domainUser.User, propertyID int64, req *UpdatePropertyRequest) (*PropertyResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	listing, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if err := auth.AuthorizeMutateListing(actor, listing); err != nil {
		logForbidden("update", actor, propertyID)
		return nil, err
	}

	req.applyTo(listing)

	if err := s.propertyRepo.Update(ctx, listing); err != nil {
		if errors.Is(err, domainProperty.ErrPropertyNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	logger.Info("Property updated",
		zap.Int64("property_id", listing.ID),
		zap.Int64("owner_id", listing.OwnerID),
		zap.String("event", "listing_updated"),
	)

	return ToPropertyResponse(listing), nil
}

func (s *Service) Delete(ctx context.Context, actor *domainUser.User, propertyID int64) error {
	listing, err := s.find(ctx, propertyID)
	if err != nil {
		return err
	}

	if err := auth.AuthorizeMutateListing(actor, listing); err != nil {
		logForbidden("delete", actor, propertyID)
		return err
	}

	if err := s.propertyRepo.Delete(ctx, propertyID); err != nil {
		if errors.Is(err, domainProperty.ErrPropertyNotFound) {
			return appErrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete property: %w", err)
	}

	logger.Info("Property deleted",
		zap.Int64("property_id", propertyID),
		zap.Int64("owner_id", listing.OwnerID),
		zap.String("event", "listing_deleted"),
	)

	return nil
}

// ExpressInterest records the actor's interest, notifies the seller and
// returns the seller's contact details. A failed notification is logged and
// does not fail the call.
func (s *Service) ExpressInterest(ctx context.Context, actor *domainUser.User, propertyID int64) (*InterestResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnknownSubject
	}

	listing, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	seller, err := s.userRepo.GetByID(ctx, listing.OwnerID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}

	interest := &domainProperty.Interest{
		PropertyID: listing.ID,
		UserID:     actor.ID,
	}
	if err := s.propertyRepo.AddInterest(ctx, interest); err != nil {
		if errors.Is(err, domainProperty.ErrPropertyNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to record interest: %w", err)
	}

	event := notification.InterestEvent{
		PropertyID:    listing.ID,
		PropertyTitle: listing.Title,
		SellerID:      seller.ID,
		BuyerID:       actor.ID,
		BuyerName:     actor.FullName(),
		BuyerEmail:    actor.Email,
		BuyerPhone:    actor.Phone,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.notifier.PublishInterest(ctx, event); err != nil {
		logger.Error("Failed to publish interest event",
			zap.Int64("property_id", listing.ID),
			zap.Int64("buyer_id", actor.ID),
			zap.String("event", "interest_publish_failed"),
			zap.Error(err),
		)
	}

	logger.Info("Interest recorded",
		zap.Int64("property_id", listing.ID),
		zap.Int64("buyer_id", actor.ID),
		zap.Int64("seller_id", seller.ID),
		zap.String("event", "interest_recorded"),
	)

	return &InterestResponse{
		PropertyID: listing.ID,
		Seller:     toSellerContact(seller),
	}, nil
}

func (s *Service) find(ctx context.Context, propertyID int64) (*domainProperty.Property, error) {
	listing, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, domainProperty.ErrPropertyNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return listing, nil
}

func logForbidden(action string, actor *domainUser.User, propertyID int64) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("event", "listing_forbidden"),
	}
	if actor != nil {
		fields = append(fields, zap.Int64("user_id", actor.ID))
	}
	if propertyID != 0 {
		fields = append(fields, zap.Int64("property_id", propertyID))
	}
	logger.Warn("Listing access denied", fields...)
}
