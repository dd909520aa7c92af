package routes

import (
	"zonelan-service/internal/handlers"
	"zonelan-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers agrupa todos los handlers de la aplicación
type Handlers struct {
	Material   *handlers.MaterialHandler
	Storage    *handlers.StorageHandler
	Report     *handlers.ReportHandler
	Contract   *handlers.ContractHandler
	Ticket     *handlers.TicketHandler
	Customer   *handlers.CustomerHandler
	Monitoring *handlers.MonitoringHandler
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(router *gin.Engine, h Handlers, healthChecker *middleware.HealthChecker) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Materiales y libro de stock
		materials := v1.Group("/materials")
		{
			materials.POST("", h.Material.CreateMaterial)
			materials.GET("", h.Material.ListMaterials)
			materials.GET("/:id", h.Material.GetMaterial)
			materials.PUT("/:id", h.Material.UpdateMaterial)

			// Operaciones de stock (las más importantes)
			materials.POST("/:id/operation", h.Material.ApplyOperation)
			materials.POST("/:id/adjust_stock", h.Material.AdjustStock)
			materials.GET("/:id/inventory_check", h.Material.InventoryCheck)
			materials.GET("/:id/locations", h.Material.ListMaterialLocations)
		}

		// Histórico del libro de stock
		v1.GET("/control", h.Material.ListControls)

		// Ubicaciones de material
		locations := v1.Group("/locations")
		{
			locations.POST("", h.Material.CreateLocation)
			locations.GET("/low_stock", h.Material.ListLowStock)
			locations.GET("/:id", h.Material.GetLocation)
			locations.PUT("/:id", h.Material.UpdateLocation)
			locations.DELETE("/:id", h.Material.DeleteLocation)
		}

		// Jerarquía de almacenamiento y movimientos
		storage := v1.Group("/storage")
		{
			storage.POST("/warehouses", h.Storage.CreateWarehouse)
			storage.GET("/warehouses", h.Storage.ListWarehouses)
			storage.GET("/warehouses/:id", h.Storage.GetWarehouse)
			storage.GET("/warehouses/:id/details", h.Storage.GetWarehouseDetails)
			storage.PUT("/warehouses/:id", h.Storage.UpdateWarehouse)
			storage.DELETE("/warehouses/:id", h.Storage.DeleteWarehouse)

			storage.POST("/departments", h.Storage.CreateDepartment)
			storage.GET("/departments", h.Storage.ListDepartments)
			storage.GET("/departments/:id", h.Storage.GetDepartment)
			storage.GET("/departments/:id/details", h.Storage.GetDepartmentDetails)
			storage.PUT("/departments/:id", h.Storage.UpdateDepartment)
			storage.DELETE("/departments/:id", h.Storage.DeleteDepartment)

			storage.POST("/shelves", h.Storage.CreateShelf)
			storage.GET("/shelves", h.Storage.ListShelves)
			storage.GET("/shelves/:id", h.Storage.GetShelf)
			storage.GET("/shelves/:id/details", h.Storage.GetShelfDetails)
			storage.PUT("/shelves/:id", h.Storage.UpdateShelf)
			storage.DELETE("/shelves/:id", h.Storage.DeleteShelf)

			storage.POST("/trays", h.Storage.CreateTray)
			storage.GET("/trays", h.Storage.ListTrays)
			storage.GET("/trays/:id", h.Storage.GetTray)
			storage.PUT("/trays/:id", h.Storage.UpdateTray)
			storage.DELETE("/trays/:id", h.Storage.DeleteTray)
			storage.GET("/trays/:id/path", h.Storage.GetTrayPath)
			storage.GET("/trays/:id/details", h.Storage.GetTrayDetails)
			storage.GET("/trays/:id/locations", h.Material.ListTrayLocations)

			storage.POST("/movements", h.Storage.CreateMovement)
			storage.GET("/movements", h.Storage.ListMovements)
		}

		// Partes de trabajo
		reports := v1.Group("/reports")
		{
			reports.POST("", h.Report.CreateReport)
			reports.GET("", h.Report.ListReports)
			reports.GET("/:id", h.Report.GetReport)
			reports.PUT("/:id", h.Report.UpdateReport)
			reports.DELETE("/:id", h.Report.DeleteReport)
		}

		// Contratos, mantenimientos y reportes de contrato
		contracts := v1.Group("/contracts")
		{
			contracts.GET("/dashboard", h.Contract.GetDashboard)
			contracts.GET("/pending_maintenances", h.Contract.GetPendingMaintenances)
			contracts.GET("/expiring_soon", h.Contract.GetExpiringSoon)
			contracts.POST("", h.Contract.CreateContract)
			contracts.GET("", h.Contract.ListContracts)
			contracts.GET("/:id", h.Contract.GetContract)
			contracts.PUT("/:id", h.Contract.UpdateContract)
			contracts.DELETE("/:id", h.Contract.DeleteContract)

			contracts.POST("/:id/maintenance", h.Contract.CreateMaintenanceRecord)
			contracts.GET("/:id/maintenance", h.Contract.ListMaintenanceRecords)
			contracts.GET("/:id/reports", h.Contract.ListContractReports)
		}
		v1.PUT("/maintenance/:id", h.Contract.UpdateMaintenanceRecord)

		contractReports := v1.Group("/contract_reports")
		{
			contractReports.POST("", h.Contract.CreateContractReport)
			contractReports.GET("/:id", h.Contract.GetContractReport)
			contractReports.PUT("/:id", h.Contract.UpdateContractReport)
			contractReports.DELETE("/:id", h.Contract.DeleteContractReport)
		}

		// Tickets de venta
		tickets := v1.Group("/tickets")
		{
			tickets.POST("", h.Ticket.CreateTicket)
			tickets.GET("", h.Ticket.ListTickets)
			tickets.GET("/:id", h.Ticket.GetTicket)
			tickets.DELETE("/:id", h.Ticket.DeleteTicket)
			tickets.POST("/:id/items", h.Ticket.AddItem)
			tickets.POST("/:id/pay", h.Ticket.MarkPaid)
			tickets.POST("/:id/cancel", h.Ticket.CancelTicket)
		}

		ticketItems := v1.Group("/ticket_items")
		{
			ticketItems.PUT("/:id", h.Ticket.UpdateItem)
			ticketItems.DELETE("/:id", h.Ticket.RemoveItem)
		}

		// Clientes e incidencias
		customers := v1.Group("/customers")
		{
			customers.POST("", h.Customer.CreateCustomer)
			customers.GET("", h.Customer.ListCustomers)
			customers.GET("/:id", h.Customer.GetCustomer)
			customers.PUT("/:id", h.Customer.UpdateCustomer)
			customers.DELETE("/:id", h.Customer.DeleteCustomer)
		}

		incidents := v1.Group("/incidents")
		{
			incidents.POST("", h.Customer.CreateIncident)
			incidents.GET("", h.Customer.ListIncidents)
			incidents.GET("/:id", h.Customer.GetIncident)
			incidents.PUT("/:id", h.Customer.UpdateIncident)
			incidents.DELETE("/:id", h.Customer.DeleteIncident)
		}

		// Monitoring routes
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", h.Monitoring.GetMetrics)
			monitoring.GET("/metrics/summary", h.Monitoring.GetMetricsSummary)
			monitoring.GET("/ws", h.Monitoring.WebSocketMetrics)
		}
	}

	// Métricas Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check (mantener en raíz para compatibilidad)
	router.GET("/health", healthChecker.HealthCheck)
	router.GET("/health/monitoring", h.Monitoring.HealthCheck)

	// API info en raíz
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Zonelan Service API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health":  "/health",
				"metrics": "/metrics",
				"api":     "/api/v1",
				"materials": gin.H{
					"operation":       "POST /api/v1/materials/:id/operation",
					"adjust_stock":    "POST /api/v1/materials/:id/adjust_stock",
					"inventory_check": "GET /api/v1/materials/:id/inventory_check",
				},
				"storage": gin.H{
					"movements": "POST /api/v1/storage/movements",
				},
				"control": "GET /api/v1/control",
			},
		})
	})
}
