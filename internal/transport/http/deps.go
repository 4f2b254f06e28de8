package http

import (
	"github.com/rdzcn/weight-tracker/internal/infrastructure/dynamo"
	jwtinfra "github.com/rdzcn/weight-tracker/internal/infrastructure/jwt"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/ocr"
	s3infra "github.com/rdzcn/weight-tracker/internal/infrastructure/s3"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	LinkRepo    *dynamo.MagicLinkRepo
	WeightRepo  *dynamo.WeightRepo
	PhotoStore  *s3infra.Store
	Mailer      smtp.Mailer
	Extractor   ocr.Extractor
	JWTProvider *jwtinfra.Provider
}
