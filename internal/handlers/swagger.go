package handlers

// @title Queue Manager API
// @version 1.0
// @description Appointment booking and walk-in queue management, served from AWS Lambda or a local server

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name services
// @tag.description Service catalog operations

// @tag.name staff
// @tag.description Staff management operations

// @tag.name appointments
// @tag.description Appointment booking and lifecycle

// @tag.name queue
// @tag.description Walk-in queue operations

// @tag.name auth
// @tag.description Authentication operations

// @tag.name health
// @tag.description Service health
