package users

import (
	"strings"

	"sistemarest-backend/internal/audit"
	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

func userResponse(u models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/users (solo admin)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, correo y contraseña son requeridos.")
		}
		if len(body.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres.")
		}

		role, ok := models.ParseRole(body.Role)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Rol inválido.")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña.")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			IsActive:     true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return httperr.FromDB(err, "Usuario no encontrado.", "Ya existe un usuario con ese correo.")
		}

		actorID, _ := auth.CurrentUserID(c)
		audit.WriteLog(audit.LogOptions{
			UserID:     actorID,
			Action:     models.AuditActionCreate,
			EntityType: "user",
			EntityID:   user.ID,
			After:      userResponse(user),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user":    userResponse(user),
		})
	}
}

// GET /api/users?role=mesero&active=true
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.User{}).Order("name")

		if roleParam := c.Query("role"); roleParam != "" {
			role, ok := models.ParseRole(roleParam)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "Rol inválido.")
			}
			q = q.Where("role = ?", role)
		}
		if active := c.Query("active"); active != "" {
			q = q.Where("is_active = ?", active == "true")
		}

		var list []models.User
		if err := q.Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios.")
		}

		res := make([]UserResponse, 0, len(list))
		for _, u := range list {
			res = append(res, userResponse(u))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"users":   res,
		})
	}
}

// GET /api/users/:id
func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return httperr.FromDB(err, "Usuario no encontrado.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"user":    userResponse(user),
		})
	}
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// PUT /api/users/:id (solo admin)
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return httperr.FromDB(err, "Usuario no encontrado.", "")
		}
		before := userResponse(user)

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío.")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*body.Email))
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El correo no puede estar vacío.")
			}
			user.Email = email
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres.")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña.")
			}
			user.PasswordHash = string(hash)
		}
		if body.Role != nil {
			role, ok := models.ParseRole(*body.Role)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "Rol inválido.")
			}
			actorID, _ := auth.CurrentUserID(c)
			if user.Role == models.RoleAdmin && role != models.RoleAdmin && actorID == user.ID {
				return fiber.NewError(fiber.StatusBadRequest, "No puedes quitarte a ti mismo el rol de administrador.")
			}
			user.Role = role
		}
		if body.IsActive != nil {
			actorID, _ := auth.CurrentUserID(c)
			if !*body.IsActive && actorID == user.ID {
				return fiber.NewError(fiber.StatusBadRequest, "No puedes desactivar tu propia cuenta.")
			}
			user.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return httperr.FromDB(err, "Usuario no encontrado.", "Ya existe un usuario con ese correo.")
		}

		// Desactivar un usuario invalida su sesión activa.
		if body.IsActive != nil && !*body.IsActive && user.SessionID != "" {
			auth.EndSession(c.Context(), user.ID, "")
		}

		actorID, _ := auth.CurrentUserID(c)
		audit.WriteLog(audit.LogOptions{
			UserID:     actorID,
			Action:     models.AuditActionUpdate,
			EntityType: "user",
			EntityID:   user.ID,
			Before:     before,
			After:      userResponse(user),
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Usuario actualizado exitosamente.",
			"user":    userResponse(user),
		})
	}
}

// DELETE /api/users/:id (solo admin)
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		actorID, _ := auth.CurrentUserID(c)
		if actorID == id {
			return fiber.NewError(fiber.StatusBadRequest, "No puedes eliminar tu propia cuenta.")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return httperr.FromDB(err, "Usuario no encontrado.", "")
		}

		var openOrders int64
		if err := database.DB.Model(&models.Order{}).
			Where("taken_by_id = ? AND status NOT IN ?", user.ID,
				[]models.OrderStatus{models.OrderPaid, models.OrderCancelled}).
			Count(&openOrders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo verificar las órdenes del usuario.")
		}
		if openOrders > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El usuario tiene órdenes abiertas; ciérralas antes de eliminarlo.")
		}

		before := userResponse(user)
		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el usuario.")
		}

		auth.EndSession(c.Context(), user.ID, "")

		audit.WriteLog(audit.LogOptions{
			UserID:     actorID,
			Action:     models.AuditActionDelete,
			EntityType: "user",
			EntityID:   user.ID,
			Before:     before,
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Usuario eliminado exitosamente.",
		})
	}
}
