package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

const clientExistsMessage = "Client with this email or username already exists"

type clientPayload struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=50"`
	Address     string `json:"address" validate:"omitempty,max=500"`
}

type clientUpdatePayload struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Password    *string `json:"password" validate:"omitempty,min=6,max=128"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=50"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

// registerClientRoutes registers client account routes
func registerClientRoutes() {
	webserver.ApiGET("/client", listClients)
	webserver.ApiGET("/client/:id", getClient)
	webserver.ApiPOST("/client", createClient)
	webserver.ApiPUT("/client/:id", updateClient)
	webserver.ApiDELETE("/client/:id", deleteClient)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clientTaken(c echo.Context, username, email string, exceptID int64) (bool, error) {
	var exists int64
	err := GetDB(c).Model(&domain.Client{}).
		Where("(username = ? OR email = ?) AND id != ?", username, email, exceptID).
		Count(&exists).Error
	return exists > 0, err
}

func listClients(c echo.Context) error {
	var rows []domain.Client
	if err := GetDB(c).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching clients", err.Error())
	}
	return okList(c, rows, len(rows))
}

func getClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	var client domain.Client
	if err := GetDB(c).First(&client, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching client", err.Error())
	}
	return ok(c, client)
}

func createClient(c echo.Context) error {
	var payload clientPayload
	if next, err := bindAndValidate(c, &payload, "client"); !next {
		return err
	}
	username := strings.TrimSpace(payload.Username)
	email := normalizeEmail(payload.Email)
	if taken, err := clientTaken(c, username, email, 0); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating client", err.Error())
	} else if taken {
		return fail(c, http.StatusBadRequest, "CLIENT_EXISTS", clientExistsMessage, nil)
	}

	hashed, err := common.HashPassword(payload.Password, GetAppContext(c).Config().Commerce.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Error creating client", err.Error())
	}
	now := time.Now()
	client := domain.Client{
		ID:          common.UUIDint64(),
		Username:    username,
		Email:       email,
		Password:    hashed,
		PhoneNumber: strings.TrimSpace(payload.PhoneNumber),
		Address:     strings.TrimSpace(payload.Address),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := GetDB(c).Create(&client).Error; err != nil {
		if isDuplicateKey(err) {
			return fail(c, http.StatusBadRequest, "CLIENT_EXISTS", clientExistsMessage, nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating client", err.Error())
	}
	return created(c, "Client created successfully", client)
}

func updateClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	var payload clientUpdatePayload
	if next, err := bindAndValidate(c, &payload, "client"); !next {
		return err
	}

	var client domain.Client
	if err := GetDB(c).First(&client, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating client", err.Error())
	}

	if payload.Username != nil {
		client.Username = strings.TrimSpace(*payload.Username)
	}
	if payload.Email != nil {
		client.Email = normalizeEmail(*payload.Email)
	}
	if payload.Username != nil || payload.Email != nil {
		if taken, err := clientTaken(c, client.Username, client.Email, id); err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating client", err.Error())
		} else if taken {
			return fail(c, http.StatusBadRequest, "CLIENT_EXISTS", clientExistsMessage, nil)
		}
	}
	if payload.Password != nil {
		hashed, err := common.HashPassword(*payload.Password, GetAppContext(c).Config().Commerce.BcryptCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Error updating client", err.Error())
		}
		client.Password = hashed
	}
	if payload.PhoneNumber != nil {
		client.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
	}
	if payload.Address != nil {
		client.Address = strings.TrimSpace(*payload.Address)
	}
	client.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&client).Error; err != nil {
		if isDuplicateKey(err) {
			return fail(c, http.StatusBadRequest, "CLIENT_EXISTS", clientExistsMessage, nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating client", err.Error())
	}
	return okMsg(c, "Client updated successfully", client)
}

// deleteClient removes the account only. Carts and orders are left in place.
func deleteClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	res := GetDB(c).Delete(&domain.Client{}, id)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error deleting client", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	}
	return okMsg(c, "Client deleted successfully", nil)
}
