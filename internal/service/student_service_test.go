package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/internal/models"
)

func studentRequest(name, rollNo string) dto.StudentRequest {
	return dto.StudentRequest{
		Name:       name,
		Email:      rollNo + "@uni.example",
		Username:   "user-" + rollNo,
		Department: "CSE",
		RollNo:     rollNo,
	}
}

func TestStudentServiceCreateDefaults(t *testing.T) {
	store := newPrincipalStore()
	svc := NewStudentService(store, nil, nil)

	req := studentRequest(" Ada ", "R1")
	req.Email = " ADA@Uni.Example "
	student, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Ada", student.Name)
	assert.Equal(t, "ada@uni.example", student.Email)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.Equal(t, models.YearFirst, models.StringValue(student.Year))
	assert.Equal(t, models.StatusActive, student.Status)
}

func TestStudentServiceCreateUniqueAcrossPrincipals(t *testing.T) {
	store := newPrincipalStore()
	guide := store.add(models.RoleGuide, "Grace Hopper", "CSE")
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()

	req := studentRequest("Ada", "R1")
	req.Email = guide.Email
	_, err := svc.Create(ctx, req)
	requireAppError(t, err, http.StatusConflict, "Email already exists")

	_, err = svc.Create(ctx, studentRequest("Ada", "R1"))
	require.NoError(t, err)

	dupUsername := studentRequest("Alan", "R2")
	dupUsername.Username = "user-R1"
	_, err = svc.Create(ctx, dupUsername)
	requireAppError(t, err, http.StatusConflict, "Username already exists")

	dupRoll := studentRequest("Alan", "R1")
	dupRoll.Email = "alan@uni.example"
	dupRoll.Username = "alan"
	_, err = svc.Create(ctx, dupRoll)
	requireAppError(t, err, http.StatusConflict, "Roll number already exists")

	store.createErr = &pq.Error{Code: "23505", Constraint: "principals_roll_no_key"}
	_, err = svc.Create(ctx, studentRequest("Linus", "R9"))
	requireAppError(t, err, http.StatusConflict, "Roll number already exists")
}

func TestStudentServiceCreateRejectsUnknownYear(t *testing.T) {
	svc := NewStudentService(newPrincipalStore(), nil, nil)
	req := studentRequest("Ada", "R1")
	req.Year = "Fifth Year"
	_, err := svc.Create(context.Background(), req)
	requireAppError(t, err, http.StatusBadRequest, "")
}

func TestStudentServiceUpdateIsPartial(t *testing.T) {
	store := newPrincipalStore()
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()
	student, err := svc.Create(ctx, studentRequest("Ada", "R1"))
	require.NoError(t, err)

	year := models.YearFinal
	name := "  Ada Lovelace "
	updated, err := svc.Update(ctx, student.ID, dto.UpdateStudentRequest{Name: &name, Year: &year})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, models.YearFinal, models.StringValue(updated.Year))
	assert.Equal(t, "R1", models.StringValue(updated.RollNo))
	assert.Equal(t, "r1@uni.example", updated.Email)

	_, err = svc.Update(ctx, uuid.NewString(), dto.UpdateStudentRequest{Name: &name})
	requireAppError(t, err, http.StatusNotFound, "Student not found")
}

func TestStudentServiceUpdateKeepsOwnEmail(t *testing.T) {
	store := newPrincipalStore()
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()
	student, err := svc.Create(ctx, studentRequest("Ada", "R1"))
	require.NoError(t, err)

	email := "R1@uni.example"
	_, err = svc.Update(ctx, student.ID, dto.UpdateStudentRequest{Email: &email})
	require.NoError(t, err)
}

func TestStudentServiceListAndDelete(t *testing.T) {
	store := newPrincipalStore()
	store.add(models.RoleStudent, "Ada", "CSE")
	bob := store.add(models.RoleStudent, "Bob", "ECE")
	guide := store.add(models.RoleGuide, "Grace", "CSE")
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cse, err := svc.List(ctx, " cse ")
	require.NoError(t, err)
	require.Len(t, cse, 1)
	assert.Equal(t, "Ada", cse[0].Name)

	requireAppError(t, svc.Delete(ctx, guide.ID), http.StatusNotFound, "Student not found")
	require.NoError(t, svc.Delete(ctx, bob.ID))
	requireAppError(t, svc.Delete(ctx, bob.ID), http.StatusNotFound, "Student not found")
}

func TestGuideServiceListScopesGuides(t *testing.T) {
	store := newPrincipalStore()
	grace := store.add(models.RoleGuide, "Grace", "CSE")
	store.add(models.RoleGuide, "Edsger", "CSE")
	admin := store.add(models.RoleAdmin, "Root", "")
	svc := NewGuideService(store, nil, nil)
	ctx := context.Background()

	own, err := svc.List(ctx, claimsFor(grace), "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, grace.ID, own[0].ID)

	all, err := svc.List(ctx, claimsFor(admin), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGuideServiceCreateUpdateDelete(t *testing.T) {
	store := newPrincipalStore()
	svc := NewGuideService(store, nil, nil)
	ctx := context.Background()

	guide, err := svc.Create(ctx, dto.GuideRequest{
		Name: "Grace Hopper", Email: "grace@uni.example", Username: "grace", Department: "CSE", Specialization: "Compilers",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, guide.Status)
	assert.Equal(t, models.RoleGuide, guide.Role)

	_, err = svc.Create(ctx, dto.GuideRequest{
		Name: "Grace Two", Email: "grace2@uni.example", Username: "GRACE", Department: "CSE", Specialization: "Compilers",
	})
	requireAppError(t, err, http.StatusConflict, "Username already exists")

	_, err = svc.Create(ctx, dto.GuideRequest{Name: "Al", Email: "al@uni.example", Username: "al", Department: "CSE", Specialization: "AI"})
	requireAppError(t, err, http.StatusBadRequest, "")

	inactive := models.StatusInactive
	updated, err := svc.Update(ctx, guide.ID, dto.UpdateGuideRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, updated.Status)
	assert.Equal(t, "Compilers", models.StringValue(updated.Specialization))

	graduated := models.StatusGraduated
	_, err = svc.Update(ctx, guide.ID, dto.UpdateGuideRequest{Status: &graduated})
	requireAppError(t, err, http.StatusBadRequest, "")

	require.NoError(t, svc.Delete(ctx, guide.ID))
	requireAppError(t, svc.Delete(ctx, guide.ID), http.StatusNotFound, "Guide not found")
}
