package auth

import (
	domainProperty "property-marketplace/internal/domain/property"
	domainUser "property-marketplace/internal/domain/user"
	appErrors "property-marketplace/pkg/errors"
)

// CanCreateListing allows sellers only.
func CanCreateListing(user *domainUser.User) bool {
	return user != nil && user.IsSeller
}

// CanMutateListing allows the listing's owner only. Update and delete share
// this rule.
func CanMutateListing(user *domainUser.User, listing *domainProperty.Property) bool {
	return user != nil && listing != nil && user.ID == listing.OwnerID
}

func AuthorizeCreateListing(user *domainUser.User) error {
	if !CanCreateListing(user) {
		return appErrors.ErrForbidden
	}
	return nil
}

func AuthorizeMutateListing(user *domainUser.User, listing *domainProperty.Property) error {
	if !CanMutateListing(user, listing) {
		return appErrors.ErrForbidden
	}
	return nil
}
