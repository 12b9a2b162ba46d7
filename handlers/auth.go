package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanchitpandey/visitpass-api/identity"
	"github.com/sanchitpandey/visitpass-api/middleware"
	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/store"
	"github.com/sanchitpandey/visitpass-api/utils"
)

type AuthHandler struct {
	store    store.Store
	secret   []byte
	expire   time.Duration
	verifier identity.Verifier
}

func NewAuthHandler(st store.Store, secret []byte, expire time.Duration, verifier identity.Verifier) *AuthHandler {
	return &AuthHandler{
		store:    st,
		secret:   secret,
		expire:   expire,
		verifier: verifier,
	}
}

// RegisterStaff creates a security or admin account. Admin-only route.
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req models.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide name, email, password and role"})
		return
	}

	if req.Role != models.RoleSecurity && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role specified"})
		return
	}

	if _, err := h.store.AccountByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	account := &models.Account{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := h.store.CreateAccount(c.Request.Context(), account); err != nil {
		if err == store.ErrDuplicate {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
			return
		}
		log.Printf("Error creating staff account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	token, err := utils.GenerateToken(h.secret, account.ID, account.Role, h.expire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"role":  account.Role,
		},
	})
}

// Login authenticates any role with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide email and password"})
		return
	}

	account, err := h.store.AccountByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if !account.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account is disabled. Please contact administrator."})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(h.secret, account.ID, account.Role, h.expire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"role":  account.Role,
		},
		"visitor": h.visitorSummary(c, account),
	})
}

// FirebaseLogin exchanges a verified external identity token for a local
// session. It authenticates pre-registered accounts only; there is no
// auto-registration here.
func (h *AuthHandler) FirebaseLogin(c *gin.Context) {
	var req models.FirebaseLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide an id_token"})
		return
	}

	if h.verifier == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Identity verification service is not available"})
		return
	}

	claims, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		log.Printf("Firebase token verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid identity token"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleVisitor
	}

	account, err := h.store.AccountByPhoneAndRole(c.Request.Context(), claims.PhoneNumber, role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No account registered for this phone number"})
		return
	}

	if !account.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account is disabled. Please contact administrator."})
		return
	}

	token, err := utils.GenerateToken(h.secret, account.ID, account.Role, h.expire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"role":  account.Role,
		},
		"visitor": h.visitorSummary(c, account),
	})
}

// Me returns the caller's account plus the linked visitor summary.
func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
		"visitor": h.visitorSummary(c, account),
	})
}

func (h *AuthHandler) visitorSummary(c *gin.Context, account *models.Account) *models.VisitorSummary {
	if account.Role != models.RoleVisitor || account.VisitorID == nil {
		return nil
	}
	visitor, err := h.store.VisitorByID(c.Request.Context(), *account.VisitorID)
	if err != nil {
		return nil
	}
	return &models.VisitorSummary{ID: visitor.ID, QRCode: visitor.QRCodeData}
}
