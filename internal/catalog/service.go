package catalog

import (
	"context"
	"net/url"
)

// Service is the directory backend as seen by the front-end controllers.
type Service interface {
	Categories(ctx context.Context) ([]string, error)
	Locations(ctx context.Context) ([]string, error)
	Businesses(ctx context.Context, q Query) ([]Business, error)
	SubmitContact(ctx context.Context, form url.Values) (ContactReply, error)
}
