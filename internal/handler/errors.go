package handler

import "github.com/gofiber/fiber/v2"

// conflict writes a 409 response naming the conflicting condition.
func conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"Conflict": msg})
}

// notFound writes a 404 response naming the missing resource.
func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"NotFound": msg})
}

// badRequest writes a 400 response for malformed or invalid request bodies.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// internalError writes a 500 response for anything not modelled as a
// distinguished outcome.
func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
