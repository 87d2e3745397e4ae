package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yabreu65/buildingOs-sub002/app/controllers"
	"github.com/yabreu65/buildingOs-sub002/app/repository"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/cache"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/database"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/env"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	controllers.InitServices(database.GetDB())

	app := fiber.New()
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
