package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sanchitpandey/visitpass-api/identity"
	"github.com/sanchitpandey/visitpass-api/middleware"
	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/storage"
	"github.com/sanchitpandey/visitpass-api/store"
	"github.com/sanchitpandey/visitpass-api/utils"
)

type VisitorHandler struct {
	store    store.Store
	secret   []byte
	expire   time.Duration
	verifier identity.Verifier
	aadhaar  utils.AadhaarVerifier
	qr       utils.QRGenerator
	photos   storage.PhotoStore
}

func NewVisitorHandler(
	st store.Store,
	secret []byte,
	expire time.Duration,
	verifier identity.Verifier,
	aadhaar utils.AadhaarVerifier,
	qr utils.QRGenerator,
	photos storage.PhotoStore,
) *VisitorHandler {
	return &VisitorHandler{
		store:    st,
		secret:   secret,
		expire:   expire,
		verifier: verifier,
		aadhaar:  aadhaar,
		qr:       qr,
		photos:   photos,
	}
}

// Register creates a visitor profile and its linked account from the multipart
// registration form, then issues a session token for immediate login.
func (h *VisitorHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var form models.RegisterVisitorForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide all required fields."})
		return
	}

	// Caller identity: a verified phone token when the external verifier is
	// configured, the raw form field otherwise.
	phone := form.PhoneNumber
	var firebaseUID *string
	if h.verifier != nil {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, no token provided"})
			return
		}
		claims, err := h.verifier.Verify(ctx, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Printf("Registration token verification failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid identity token"})
			return
		}
		phone = claims.PhoneNumber
		firebaseUID = &claims.UID
	}

	if form.Name == "" || form.Email == "" || form.AadhaarNumber == "" || form.Age == 0 ||
		form.Sex == "" || form.Address == "" || form.OfficialToMeet == "" || phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide all required fields."})
		return
	}

	selfie, err := c.FormFile("selfie")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Selfie image is required."})
		return
	}

	exists, err := h.store.AccountExistsByPhone(ctx, phone)
	if err != nil {
		log.Printf("Error checking account existence: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A user with this phone number is already registered."})
		return
	}

	exists, err = h.store.VisitorExistsByAadhaar(ctx, form.AadhaarNumber)
	if err != nil {
		log.Printf("Error checking visitor existence: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A visitor with this Aadhaar number is already registered."})
		return
	}

	valid, err := h.aadhaar.Verify(ctx, form.AadhaarNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Aadhaar number format."})
		return
	}

	selfieURL, err := h.saveSelfie(c, selfie.Filename)
	if err != nil {
		log.Printf("Error storing selfie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store selfie image"})
		return
	}

	now := time.Now()
	qrData, err := h.qr.Generate(form.Name, form.AadhaarNumber, now)
	if err != nil {
		log.Printf("Error generating QR token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	visitor := &models.Visitor{
		ID:             uuid.New(),
		Name:           form.Name,
		PhoneNumber:    phone,
		Email:          form.Email,
		AadhaarNumber:  form.AadhaarNumber,
		Age:            form.Age,
		Sex:            form.Sex,
		Address:        form.Address,
		OfficialToMeet: form.OfficialToMeet,
		ReferredBy:     form.ReferredBy,
		Diseases:       form.Diseases,
		SelfieURL:      selfieURL,
		QRCodeData:     qrData,
		Status:         models.StatusOutside,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	account := &models.Account{
		ID:          uuid.New(),
		Name:        form.Name,
		Email:       form.Email,
		PhoneNumber: phone,
		FirebaseUID: firebaseUID,
		Role:        models.RoleVisitor,
		VisitorID:   &visitor.ID,
		IsActive:    true,
		CreatedAt:   now,
	}

	if err := h.store.CreateVisitorWithAccount(ctx, visitor, account); err != nil {
		if err == store.ErrDuplicate {
			// Constraint fired under a race the pre-checks missed.
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A visitor with this Aadhaar number is already registered."})
			return
		}
		log.Printf("Registration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	token, err := utils.GenerateToken(h.secret, account.ID, account.Role, h.expire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	log.Printf("Registered visitor %s (aadhaar ending %s)", visitor.ID, form.AadhaarNumber[8:])

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Visitor registered successfully",
		"token":   token,
		"user": gin.H{
			"id":   account.ID,
			"name": account.Name,
			"role": account.Role,
		},
		"visitor": gin.H{
			"id":     visitor.ID,
			"qrCode": visitor.QRCodeData,
			"status": visitor.Status,
		},
	})
}

func (h *VisitorHandler) saveSelfie(c *gin.Context, filename string) (string, error) {
	file, err := c.FormFile("selfie")
	if err != nil {
		return "", err
	}
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + filename
	return h.photos.Save(c.Request.Context(), name, data, file.Header.Get("Content-Type"))
}

// List returns visitors, most recent first, with pagination and optional date
// and status filters.
func (h *VisitorHandler) List(c *gin.Context) {
	q := models.ListVisitorsQuery{Page: 1, Limit: 10}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if v := c.Query("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		q.Date = &day
	}
	q.Status = c.Query("status")

	visitors, total, err := h.store.ListVisitors(c.Request.Context(), q)
	if err != nil {
		log.Printf("Error listing visitors: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(visitors),
		"totalPages":  totalPages,
		"currentPage": q.Page,
		"data":        visitors,
	})
}

// GetByID returns one visitor plus their recent visit history.
func (h *VisitorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid visitor ID format"})
		return
	}

	visitor, err := h.store.VisitorByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Visitor not found"})
			return
		}
		log.Printf("Error getting visitor %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	history, err := h.store.VisitHistory(c.Request.Context(), id, 10)
	if err != nil {
		log.Printf("Error getting visit history for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"visitor":      visitor,
			"visitHistory": history,
		},
	})
}

// MyInfo returns the calling visitor's own record.
func (h *VisitorHandler) MyInfo(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if account == nil || account.VisitorID == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Visitor record not found"})
		return
	}

	visitor, err := h.store.VisitorByID(c.Request.Context(), *account.VisitorID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Visitor record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":            visitor.ID,
			"name":          visitor.Name,
			"phoneNumber":   visitor.PhoneNumber,
			"aadhaarNumber": visitor.AadhaarNumber,
			"qrCode":        visitor.QRCodeData,
			"selfieUrl":     visitor.SelfieURL,
			"status":        visitor.Status,
		},
	})
}
