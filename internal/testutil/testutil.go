// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Secret signs test tokens.
const Secret = "test-signing-secret"

// NewDB opens a migrated in-memory sqlite database with foreign keys on.
// The pool holds one connection so every query sees the same database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}

// CreateUser inserts a user.
func CreateUser(t testing.TB, db *gorm.DB, userID string) *models.User {
	t.Helper()
	email := userID + "@example.com"
	user := &models.User{UserID: userID, Email: &email}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateJob inserts an active job with the given reference.
func CreateJob(t testing.TB, db *gorm.DB, reference string) *models.Job {
	t.Helper()
	job := &models.Job{
		Reference: reference,
		Name:      "Job " + reference,
		StartDate: "2026-01-01",
		EndDate:   "2026-01-02",
		Location:  "Main Stage",
		Status:    models.JobStatusActive,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

// Assign gives userID role on jobID, creating the user when missing.
func Assign(t testing.TB, db *gorm.DB, jobID, userID, role string) *models.JobRoleAssignment {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", userID).Count(&count).Error)
	if count == 0 {
		CreateUser(t, db, userID)
	}
	a := &models.JobRoleAssignment{JobID: jobID, UserID: userID, Role: role}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Token signs an HS256 token with Secret. An empty role omits the claim.
func Token(t testing.TB, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"name":  "User " + sub,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
	require.NoError(t, err)
	return signed
}
