package routes

import (
	"net/http"
	"time"

	"reservas/constants"
	"reservas/controllers"
	middlewares "reservas/middleware"
	"reservas/services"
	"reservas/services/logger"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies the route table binds to handlers
type Services struct {
	Reservations *services.ReservationService
	Linker       *services.EventRoomLinker
	Imports      *services.ImportService
	Location     *time.Location
	Logger       logger.Logger
	JWTSecret    string
}

func SetupRoutes(router *gin.Engine, s Services) {
	reservationController := controllers.NewReservationController(controllers.ReservationControllerOptions{
		Service:  s.Reservations,
		Linker:   s.Linker,
		Location: s.Location,
		Logger:   s.Logger,
	})
	availabilityController := controllers.NewAvailabilityController(s.Reservations, s.Location, s.Logger)
	pricingController := controllers.NewPricingController(s.Reservations, s.Location, s.Logger)
	rateController := controllers.NewRateController(s.Reservations, s.Logger)
	importController := controllers.NewImportController(s.Imports, s.Logger)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	v1 := router.Group("/api/v1")
	v1.Use(middlewares.RequestIDMiddleware(), middlewares.ErrorHandler())
	staff := v1.Group("", middlewares.AuthMiddleware(s.JWTSecret, constants.RoleStaff, constants.RoleAdmin))

	staff.GET("/reservas/:type", reservationController.List)
	staff.POST("/reservas/:type", reservationController.Create)
	staff.GET("/reservas/:type/:id", reservationController.Get)
	staff.PUT("/reservas/:type/:id", reservationController.Update)
	staff.DELETE("/reservas/:type/:id", reservationController.Delete)
	staff.PUT("/reservas/:type/:id/estado", reservationController.ChangeStatus)
	staff.PUT("/reservas/:type/:id/asignar", reservationController.Assign)
	staff.POST("/reservas/:type/:id/habitaciones", reservationController.LinkRooms)
	staff.GET("/reservas/:type/:id/habitaciones", reservationController.LinkedRooms)
	staff.DELETE("/reservas/:type/:id/evento", reservationController.UnlinkRoom)

	staff.GET("/disponibilidad", availabilityController.Check)
	staff.GET("/disponibilidad/calendario", availabilityController.Calendar)

	staff.POST("/precios/estimar", pricingController.Estimate)

	staff.GET("/tarifas", rateController.List)
	staff.PUT("/tarifas", middlewares.RoleMiddleware(constants.RoleAdmin), rateController.Save)

	staff.POST("/importar", importController.Import)
	staff.POST("/importar/excel", importController.Import)
	staff.POST("/importar/validar", importController.Validate)
	staff.GET("/importaciones", importController.List)
}
