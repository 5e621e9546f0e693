package controllers

import (
	"errors"
	"net/http"
	"time"

	"detailpro-backend/config"
	"detailpro-backend/models"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name         string   `json:"name" binding:"required"`
	Phone        string   `json:"phone" binding:"required"`
	Email        *string  `json:"email"` // Pointer to allow null
	Address1     string   `json:"address1"`
	Address2     string   `json:"address2"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	CustomerType string   `json:"customerType"`
	Vehicles     []string `json:"vehicles"`
	Notes        string   `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address1     *string `json:"address1"`
	Address2     *string `json:"address2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Zip          *string `json:"zip"`
	CustomerType *string `json:"customerType"`
	IsActive     *bool   `json:"isActive"`
}

// shopRegion loads the shop's home country for phone parsing.
func shopRegion(shopID uuid.UUID) string {
	var shop models.Shop
	if err := config.DB.Select("region").First(&shop, "id = ?", shopID).Error; err != nil || shop.Region == "" {
		return utils.HomeRegion()
	}
	return shop.Region
}

func shopAndUserFromContext(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	shopID, exists := c.Get("shopId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Shop ID not found in context")
		return uuid.Nil, uuid.Nil, false
	}
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, uuid.Nil, false
	}

	shopUUID, err := uuid.Parse(shopID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid shop ID format")
		return uuid.Nil, uuid.Nil, false
	}
	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return shopUUID, userUUID, true
}

// CreateCustomer creates a new customer for the shop
func CreateCustomer(c *gin.Context) {
	shopUUID, userUUID, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Phone number must have at least 10 digits")
		return
	}
	identity := utils.NormalizePhoneInRegion(input.Phone, shopRegion(shopUUID))

	// Reject a phone that already resolves to an existing customer
	store := services.NewGormCustomerStore(config.DB)
	existing, _, err := services.NewMatcher(store).Match(c.Request.Context(), shopUUID, identity)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if existing != nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	}

	customer := models.Customer{
		ID:              uuid.New(),
		ShopID:          shopUUID,
		CreatedByUserID: userUUID,
		Name:            input.Name,
		Phone:           input.Phone,
		PhoneE164:       identity.E164,
		PhoneLast10:     identity.Last10,
		Address1:        input.Address1,
		Address2:        input.Address2,
		City:            input.City,
		State:           input.State,
		Zip:             input.Zip,
		CustomerType:    input.CustomerType,
		IsActive:        true,
		Extra:           models.JSONB{},
	}

	if input.Email != nil {
		customer.Email = *input.Email
	}
	for i, label := range input.Vehicles {
		customer.Vehicles = append(customer.Vehicles, models.CustomerVehicle{
			Label:    label,
			Position: i,
		})
	}
	if input.Notes != "" {
		customer.Notes = append(customer.Notes, models.CustomerNote{
			Body:   input.Notes,
			Source: "manual",
		})
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves all customers for the shop
func GetCustomers(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	var customers []models.Customer
	if err := config.DB.Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("shop_id = ?", shopUUID).Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

func customerByID(c *gin.Context, shopUUID uuid.UUID, preloadNotes bool) (*models.Customer, bool) {
	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return nil, false
	}

	q := config.DB.Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if preloadNotes {
		q = q.Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	}

	var customer models.Customer
	if err := q.Where("shop_id = ? AND id = ?", shopUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &customer, true
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	customer, ok := customerByID(c, shopUUID, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, ok := customerByID(c, shopUUID, false)
	if !ok {
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Phone number must have at least 10 digits")
			return
		}
		identity := utils.NormalizePhoneInRegion(*input.Phone, shopRegion(shopUUID))

		// Check if phone is being changed to another existing customer
		if customer.PhoneLast10 != identity.Last10 {
			store := services.NewGormCustomerStore(config.DB)
			existing, _, err := services.NewMatcher(store).Match(c.Request.Context(), shopUUID, identity)
			if err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
			if existing != nil && existing.ID != customer.ID {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			}
		}
		customer.Phone = *input.Phone
		customer.PhoneE164 = identity.E164
		customer.PhoneLast10 = identity.Last10
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Address1 != nil {
		customer.Address1 = *input.Address1
	}
	if input.Address2 != nil {
		customer.Address2 = *input.Address2
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.State != nil {
		customer.State = *input.State
	}
	if input.Zip != nil {
		customer.Zip = *input.Zip
	}
	if input.CustomerType != nil {
		customer.CustomerType = *input.CustomerType
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Omit("Vehicles", "Notes").Save(customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shopUUID, customerUUID).
		Delete(&models.Customer{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

type NoteInput struct {
	Body string `json:"body" binding:"required"`
}

// AddCustomerNote appends a note to the customer's history
func AddCustomerNote(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	customer, ok := customerByID(c, shopUUID, false)
	if !ok {
		return
	}

	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	note := models.CustomerNote{
		CustomerID: customer.ID,
		Body:       input.Body,
		Source:     "manual",
	}
	if err := config.DB.Create(&note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

func noteByID(c *gin.Context, shopUUID uuid.UUID) (*models.CustomerNote, bool) {
	customer, ok := customerByID(c, shopUUID, false)
	if !ok {
		return nil, false
	}

	noteUUID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid note ID format")
		return nil, false
	}

	var note models.CustomerNote
	if err := config.DB.Where("customer_id = ? AND id = ?", customer.ID, noteUUID).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Note not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &note, true
}

// UpdateCustomerNote edits a single note's text
func UpdateCustomerNote(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	note, ok := noteByID(c, shopUUID)
	if !ok {
		return
	}

	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	note.Body = input.Body
	if err := config.DB.Save(note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update note")
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteCustomerNote removes a single note
func DeleteCustomerNote(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	note, ok := noteByID(c, shopUUID)
	if !ok {
		return
	}

	if err := config.DB.Delete(note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully", "deletedAt": time.Now()})
}
