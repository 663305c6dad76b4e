package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VehicleHandler struct {
	vehicleService      *services.VehicleService
	availabilityService *services.AvailabilityService
	validator           *validator.Validate
}

func NewVehicleHandler(vehicleService *services.VehicleService, availabilityService *services.AvailabilityService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService:      vehicleService,
		availabilityService: availabilityService,
		validator:           validator.New(),
	}
}

// GetVehicles retrieves all vehicles
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.GetAllVehicles()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Vehicles retrieved successfully", len(vehicles), vehicles)
}

// GetAvailableVehicles runs the availability search: static capacity and
// pincode filters, then the booking-overlap filter when a window is supplied.
func (h *VehicleHandler) GetAvailableVehicles(c *gin.Context) {
	filter, fieldErrors := parseAvailabilityQuery(c)
	if len(fieldErrors) > 0 {
		utils.MultiErrorResponse(c, http.StatusBadRequest, fieldErrors)
		return
	}

	vehicles, err := h.availabilityService.FindAvailable(filter)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to search available vehicles", err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Available vehicles retrieved successfully", len(vehicles), vehicles)
}

func parseAvailabilityQuery(c *gin.Context) (services.AvailabilityFilter, []string) {
	var fieldErrors []string
	filter := services.AvailabilityFilter{
		PickupPincode: c.Query("pickupPincode"),
	}

	if raw := c.Query("capacityRequired"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil || capacity < 0 {
			fieldErrors = append(fieldErrors, "Capacity required must be a non-negative number")
		} else {
			filter.CapacityRequired = capacity
		}
	}

	var window models.TimeWindow
	if raw := c.Query("startTime"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fieldErrors = append(fieldErrors, "Start time must be a valid date")
		} else {
			window.Start = start
		}
	}
	if raw := c.Query("endTime"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fieldErrors = append(fieldErrors, "End time must be a valid date")
		} else {
			window.End = end
		}
	}
	if !window.Start.IsZero() && !window.End.IsZero() && !window.End.After(window.Start) {
		fieldErrors = append(fieldErrors, "End time must be after start time")
	}
	filter.Window = window

	if raw := c.Query("estimatedRideDurationHours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours < 0 {
			fieldErrors = append(fieldErrors, "Estimated ride duration must be a non-negative number")
		} else {
			filter.EstimatedRideDurationHours = hours
		}
	}

	if from := c.Query("fromPincode"); from != "" {
		filter.From = services.PincodePoint(from)
	}
	if to := c.Query("toPincode"); to != "" {
		filter.To = services.PincodePoint(to)
	}

	return filter, fieldErrors
}

// GetVehicle retrieves a specific vehicle by ID
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	vehicle, err := h.vehicleService.GetVehicleByID(vehicleID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(&req)
	if err != nil {
		respondServiceError(c, err, "Failed to create vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle updates an existing vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(vehicleID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

// DeleteVehicle deletes a vehicle unless active bookings still claim it
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Vehicle ID is required", nil)
		return
	}

	if err := h.vehicleService.DeleteVehicle(vehicleID); err != nil {
		respondServiceError(c, err, "Failed to delete vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}
