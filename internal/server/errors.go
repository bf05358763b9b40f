package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// statusOf maps planning errors to HTTP status codes.
func statusOf(err error) int {
	var (
		gridErr    *core.InvalidGridError
		clusterErr *core.InvalidClusterRequestError
		assignErr  *core.AssignmentSizeMismatchError
		unreachErr *core.UnreachableTargetError
		noPathErr  *core.NoPathFoundError
		fiberErr   *fiber.Error
	)
	switch {
	case errors.Is(err, core.ErrInvalidRequest),
		errors.As(err, &gridErr),
		errors.As(err, &clusterErr),
		errors.As(err, &assignErr):
		return fiber.StatusBadRequest
	case errors.As(err, &unreachErr), errors.As(err, &noPathErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders errors returned by handlers as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	return c.Status(statusOf(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
