package storefrontserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	cartapp "github.com/Apurer/freshcart-api/internal/domains/cart/application"
	cartdomain "github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	catalogapp "github.com/Apurer/freshcart-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/freshcart-api/internal/domains/catalog/ports"
	checkoutapp "github.com/Apurer/freshcart-api/internal/domains/checkout/application"
	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	apierrors "github.com/Apurer/freshcart-api/internal/shared/errors"
)

var responder = apierrors.NewResponder("",
	authProblem,
	validationProblem,
	orderProblem,
	checkoutProblem,
	catalogProblem,
)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func authProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, accountsapp.ErrUnauthenticated),
		errors.Is(err, ordersapp.ErrUnauthenticated),
		errors.Is(err, checkoutapp.ErrUnauthenticated):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, accountsapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail("invalid email or password"), true
	case errors.Is(err, ordersapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, accountsapp.ErrEmailTaken):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, accountsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, accountsapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// validationProblem reports field-level failures before the generic invalid-input sentinels are tried.
func validationProblem(err error) (apierrors.ProblemDetail, bool) {
	var verr *checkoutdomain.ValidationError
	if !errors.As(err, &verr) {
		return apierrors.ProblemDetail{}, false
	}
	fields := make(map[string]string, len(verr.Fields))
	for k, v := range verr.Fields {
		fields[k] = v
	}
	return apierrors.NewValidationProblem(fields).WithDetail(verr.Error()), true
}

func orderProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrEmptyCart):
		return apierrors.ErrEmptyCart.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrSubmissionInFlight),
		errors.Is(err, ordersapp.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrOrderCreateFailed),
		errors.Is(err, ordersapp.ErrOrderLinesFailed):
		return apierrors.NewStepProblem(
			apierrors.ErrBadGateway.WithDetail(err.Error()),
			ordersapp.FailedStep(err),
			ordersapp.Retryable(err),
		), true
	case errors.Is(err, ordersapp.ErrEmailSendFailed):
		return apierrors.NewStepProblem(
			apierrors.ErrServiceUnavailable.WithDetail(err.Error()),
			ordersapp.StepEmail,
			true,
		), true
	case errors.Is(err, ordersapp.ErrOrderNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "order"), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func checkoutProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, checkoutapp.ErrNotStarted):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "checkout"), true
	case errors.Is(err, checkoutdomain.ErrWrongStep):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func catalogProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "product"), true
	case errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, cartdomain.ErrNilProduct),
		errors.Is(err, cartdomain.ErrInvalidQuantity),
		errors.Is(err, cartapp.ErrMissingInstallation):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
