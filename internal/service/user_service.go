package service

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/storage"
	"quill/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Photo change result kinds returned in the tri-state envelope.
const (
	PhotoChangeSuccess      = "success"
	PhotoChangeError        = "error"
	PhotoChangeLimitReached = "limit_reached"
)

// UserService implements registration, login, profile reads and the
// quota-gated profile photo change.
type UserService struct {
	userRepo     repository.UserRepository
	uploader     storage.Uploader
	uploadFolder string
	maxPhotoSize int64
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Photo    string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangePhotoInput struct {
	User     *models.User
	Filename string
	Content  []byte
}

// PhotoChangeResult is the envelope returned by the photo change operation.
// Storage failures degrade to a reported failure here instead of an error
// status; counters and the stored photo stay untouched in that case.
type PhotoChangeResult struct {
	Result  string          `json:"result"`
	Other   *models.Profile `json:"other"`
	Success bool            `json:"success"`
}

func NewUserService(userRepo repository.UserRepository, uploader storage.Uploader, uploadFolder string, maxPhotoSizeMB int) *UserService {
	return &UserService{
		userRepo:     userRepo,
		uploader:     uploader,
		uploadFolder: uploadFolder,
		maxPhotoSize: int64(maxPhotoSizeMB) * 1024 * 1024,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDisplayName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	photo := in.Photo
	if photo == "" {
		photo = models.DefaultAvatarURL
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Password:       string(hashed),
		Photo:          photo,
		PostCount:      0,
		ChangePerMonth: 0,
	}

	// The unique email index still backstops the pre-check above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, oid)
}

// ChangePhoto uploads a new profile photo and records it with a guarded
// atomic update. The ceiling check runs twice: once here against the loaded
// user for the soft limit_reached result, and once inside the repository
// update so a concurrent change cannot slip past the quota.
func (s *UserService) ChangePhoto(ctx context.Context, in ChangePhotoInput) (*PhotoChangeResult, error) {
	user := in.User
	if user.ChangePerMonth >= models.MaxPhotoChanges {
		return &PhotoChangeResult{Result: PhotoChangeLimitReached}, nil
	}

	if err := storage.ValidateImage(in.Content, s.maxPhotoSize); err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, in.Content, in.Filename, s.uploadFolder)
	if err != nil {
		observability.UploadFailures.Inc()
		return &PhotoChangeResult{Result: PhotoChangeError}, nil
	}

	thumb := storage.ThumbnailURL(url)
	if err := s.userRepo.UpdatePhoto(ctx, user.ID, thumb); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeQuotaExceeded {
			return &PhotoChangeResult{Result: PhotoChangeLimitReached}, nil
		}
		return nil, err
	}

	profile := user.Profile()
	profile.Photo = thumb
	return &PhotoChangeResult{
		Result:  PhotoChangeSuccess,
		Other:   &profile,
		Success: true,
	}, nil
}
