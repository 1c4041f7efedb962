package usecase

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"
	"github.com/sportmeetapp/sportmeet/internal/repository"
	"github.com/sportmeetapp/sportmeet/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	UserRepository *repository.UserRepository
	DB             *pgxpool.Pool
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewUserUsecase(userRepository *repository.UserRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *UserUsecase {
	return &UserUsecase{
		UserRepository: userRepository,
		DB:             db,
		Log:            zap,
		Config:         koanf,
	}
}

func validateGender(gender string) error {
	switch gender {
	case model.GenderMale, model.GenderFemale, model.GenderNonBinary, model.GenderUndisclosed:
		return nil
	}

	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: "Gender must be one of male, female, non_binary or undisclosed",
		Param:   "gender",
	}
}

func validateFavoriteSports(favoriteSports []string) error {
	if len(favoriteSports) > 3 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Favorite sports must be at most 3 entries",
			Param:   "favoriteSports",
		}
	}

	for _, sport := range favoriteSports {
		if !constant.IsKnownSport(sport) {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: fmt.Sprintf("Unknown sport: %s", sport),
				Param:   "favoriteSports",
			}
		}
	}

	return nil
}

func (usecase *UserUsecase) Register(ctx *fiber.Ctx, payload model.UserRegisterRequest) (model.UserRegisterResponse, error) {
	ctxContext := ctx.Context()
	response := model.UserRegisterResponse{}

	if payload.Email == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	} else if len(payload.Email) < 6 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email must be at least 6 characters",
			Param:   "email",
		}
	} else if len(payload.Email) > 80 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email must be at most 80 characters",
			Param:   "email",
		}
	}

	if payload.Password == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is required to not be empty",
			Param:   "password",
		}
	} else if len(payload.Password) < 8 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password must be at least 8 characters",
			Param:   "password",
		}
	} else if len(payload.Password) > 64 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password must be at most 64 characters",
			Param:   "password",
		}
	}

	if payload.FullName == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Full name is required to not be empty",
			Param:   "fullName",
		}
	} else if len(payload.FullName) > 100 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Full name must be at most 100 characters",
			Param:   "fullName",
		}
	}

	if payload.Username == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is required to not be empty",
			Param:   "username",
		}
	} else if len(payload.Username) < 4 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username must be at least 4 characters",
			Param:   "username",
		}
	} else if len(payload.Username) > 22 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username must be at most 22 characters",
			Param:   "username",
		}
	}

	if payload.Age < 13 || payload.Age > 120 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Age must be between 13 and 120",
			Param:   "age",
		}
	}

	err := validateGender(payload.Gender)
	if err != nil {
		return response, err
	}

	err = validateFavoriteSports(payload.FavoriteSports)
	if err != nil {
		return response, err
	}

	payload.Email = strings.ToLower(payload.Email)
	payload.Username = strings.ToLower(payload.Username)

	existUsername, existEmail, err := usecase.UserRepository.CheckUsernameOrEmailUnique(ctxContext, payload.Username, payload.Email)
	if err != nil {
		return response, err
	}

	if existUsername == payload.Username {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is already taken",
			Param:   "username",
		}
	}

	if existEmail == payload.Email {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already registered",
			Param:   "email",
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return response, err
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		return response, err
	}

	otpExpiresAt := time.Now().UTC().Add(5 * time.Minute).Unix()

	pending := model.PendingSignup{
		Email:          payload.Email,
		PasswordHash:   string(hashedPassword),
		FullName:       payload.FullName,
		Username:       payload.Username,
		Age:            payload.Age,
		Gender:         payload.Gender,
		FavoriteSports: payload.FavoriteSports,
		OTPHash:        util.HashSHA256(otp),
		ExpiresAt:      otpExpiresAt,
	}

	OtpTemplateData := model.OTPTemplateData{
		OTP:       otp,
		ExpiresIn: 5,
	}

	template, err := template.ParseFS(util.TemplateFS, "template/otp.html")
	if err != nil {
		return response, err
	}

	var tmpl bytes.Buffer
	err = template.Execute(&tmpl, OtpTemplateData)
	if err != nil {
		return response, err
	}

	smtpHost := usecase.Config.String("SMTP_HOST")
	smtpPort := usecase.Config.Int("SMTP_PORT")
	senderName := usecase.Config.String("SENDER_NAME")
	senderEmail := usecase.Config.String("SENDER_EMAIL")
	senderPassword := usecase.Config.String("SENDER_PASSWORD")

	subject := "Register OTP Verification Code"
	err = util.SendEmail(smtpHost, smtpPort, senderName, senderEmail, senderPassword, payload.Email, subject, tmpl.String())
	if err != nil {
		return response, err
	}

	err = usecase.UserRepository.SetPendingSignup(ctxContext, pending)
	if err != nil {
		return response, err
	}

	response.Email = payload.Email
	response.OtpExpiresAt = otpExpiresAt

	return response, nil
}

func (usecase *UserUsecase) VerifyEmail(ctx *fiber.Ctx, payload model.UserVerifyEmailRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	if payload.Email == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	}

	if payload.OTP == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "OTP is required to not be empty",
			Param:   "otp",
		}
	} else if len(payload.OTP) < 6 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "OTP must be at least 6 characters",
			Param:   "otp",
		}
	}

	payload.Email = strings.ToLower(payload.Email)

	pending, exists, err := usecase.UserRepository.GetPendingSignup(ctxContext, payload.Email)
	if err != nil {
		return token, err
	}

	if !exists {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Signup session is expired or not exists",
			Param:   "email",
		}
	}

	if subtle.ConstantTimeCompare([]byte(pending.OTPHash), []byte(util.HashSHA256(payload.OTP))) != 1 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Otp does not match",
			Param:   "otp",
		}
	}

	if time.Now().Unix() > pending.ExpiresAt {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Otp is expired",
			Param:   "otp",
		}
	}

	userId := uuid.New()
	now := time.Now().UTC()
	user := model.User{
		Id:             userId,
		Email:          pending.Email,
		Password:       pending.PasswordHash,
		FullName:       pending.FullName,
		Username:       pending.Username,
		Age:            pending.Age,
		Gender:         pending.Gender,
		FavoriteSports: pending.FavoriteSports,
		AvatarImageId:  nil,
		Verified:       true,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return token, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.UserRepository.Register(ctxContext, tx, user)
	if err != nil {
		return token, err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return token, err
	}

	commited = true

	err = usecase.UserRepository.DeletePendingSignup(ctxContext, payload.Email)
	if err != nil {
		return token, err
	}

	token, err = util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) Login(ctx *fiber.Ctx, payload model.UserLoginRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	if payload.Email == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	}

	if payload.Password == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is required to not be empty",
			Param:   "password",
		}
	}

	payload.Email = strings.ToLower(payload.Email)

	userId, password, err := usecase.UserRepository.GetUserAuth(ctxContext, payload.Email)
	if err != nil {
		return token, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(password), []byte(payload.Password))
	if err != nil {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is incorrect",
			Param:   "password",
		}
	}

	token, err = util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) GetUserInfo(ctx *fiber.Ctx, userId uuid.UUID) (model.UserResponse, error) {
	user, err := usecase.UserRepository.GetUserInfo(ctx.Context(), userId)
	if err != nil {
		return user, err
	}

	MINIO_URL := usecase.Config.String("MINIO_URL")
	MINIO_BUCKET_NAME := usecase.Config.String("MINIO_BUCKET_NAME")
	MINIO_HTTP := usecase.Config.String("MINIO_HTTP")

	if user.AvatarImage != nil {
		*user.AvatarImage = fmt.Sprintf("%s%s/%s/%s", MINIO_HTTP, MINIO_URL, MINIO_BUCKET_NAME, *user.AvatarImage)
	}

	return user, nil
}

func (usecase *UserUsecase) GetAccessToken(ctx *fiber.Ctx, userId uuid.UUID, accessToken string) error {
	hashedTokenFromCache, err := usecase.UserRepository.GetAccessTokenInCache(ctx.Context(), userId)
	if err != nil {
		return err
	}

	// Hash the token from client before comparing with cached hash
	hashedTokenFromClient := util.HashToken(accessToken)

	if hashedTokenFromClient != hashedTokenFromCache {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Authorization token is expired",
			Param:   "accessToken",
		}
	}

	return nil
}

func (usecase *UserUsecase) Logout(ctx *fiber.Ctx, userId uuid.UUID) error {
	err := usecase.UserRepository.RemoveAuthToken(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return nil
}

// UpdateProfile applies an explicit patch struct. Only non-nil fields are
// written, each through its own update statement inside one transaction.
func (usecase *UserUsecase) UpdateProfile(ctx *fiber.Ctx, userId uuid.UUID, payload model.UserPatchRequest) error {
	ctxContext := ctx.Context()

	if payload.FullName != nil {
		if *payload.FullName == "" {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Full name is required to not be empty",
				Param:   "fullName",
			}
		} else if len(*payload.FullName) > 100 {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Full name must be at most 100 characters",
				Param:   "fullName",
			}
		}
	}

	if payload.Username != nil {
		if len(*payload.Username) < 4 {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username must be at least 4 characters",
				Param:   "username",
			}
		} else if len(*payload.Username) > 22 {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username must be at most 22 characters",
				Param:   "username",
			}
		}

		username := strings.ToLower(*payload.Username)
		payload.Username = &username

		exists, err := usecase.UserRepository.CheckUsernameUnique(ctxContext, username)
		if err != nil {
			return err
		}

		if exists == 1 {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username is already taken",
				Param:   "username",
			}
		}
	}

	if payload.Age != nil {
		if *payload.Age < 13 || *payload.Age > 120 {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Age must be between 13 and 120",
				Param:   "age",
			}
		}
	}

	if payload.Gender != nil {
		err := validateGender(*payload.Gender)
		if err != nil {
			return err
		}
	}

	if payload.FavoriteSports != nil {
		err := validateFavoriteSports(*payload.FavoriteSports)
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	if payload.FullName != nil {
		err = usecase.UserRepository.UpdateFullName(ctxContext, tx, userId, *payload.FullName, now)
		if err != nil {
			return err
		}
	}

	if payload.Username != nil {
		err = usecase.UserRepository.UpdateUsername(ctxContext, tx, userId, *payload.Username, now)
		if err != nil {
			return err
		}
	}

	if payload.Age != nil {
		err = usecase.UserRepository.UpdateAge(ctxContext, tx, userId, *payload.Age, now)
		if err != nil {
			return err
		}
	}

	if payload.Gender != nil {
		err = usecase.UserRepository.UpdateGender(ctxContext, tx, userId, *payload.Gender, now)
		if err != nil {
			return err
		}
	}

	if payload.FavoriteSports != nil {
		err = usecase.UserRepository.UpdateFavoriteSports(ctxContext, tx, userId, *payload.FavoriteSports, now)
		if err != nil {
			return err
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	commited = true

	return nil
}

func (usecase *UserUsecase) UpdateAvatar(ctx *fiber.Ctx, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	fieldName := "avatar"
	fileHeader, err := ctx.FormFile(fieldName)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Avatar is required to not be empty",
			Param:   fieldName,
		}
	}

	imageFile, imageSize, err := util.ValidateImage(fileHeader, fieldName)
	if err != nil {
		return err
	}

	avatarImageId := uuid.New()

	now := time.Now().UTC()

	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")

	avatarImage := model.UserAvatarImage{
		Id:             avatarImageId,
		UserId:         userId,
		Bucket:         bucketName,
		ObjectKey:      fmt.Sprintf("user/avatar/%s.webp", avatarImageId),
		MimeType:       "webp",
		Size:           imageSize,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	fileName, err := usecase.UserRepository.GetUserAvatar(ctxContext, tx, userId)
	if err != nil {
		return err
	}

	if fileName != "" {
		err = usecase.UserRepository.DeleteAvatarImage(ctxContext, tx, userId)
		if err != nil {
			return err
		}

		err = usecase.UserRepository.DeleteUserAvatar(ctxContext, bucketName, fileName)
		if err != nil {
			return err
		}
	}

	err = usecase.UserRepository.AddUserAvatar(ctxContext, tx, avatarImage)
	if err != nil {
		return err
	}

	err = usecase.UserRepository.SetAvatarImageId(ctxContext, tx, userId, avatarImageId, now)
	if err != nil {
		return err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	commited = true

	err = usecase.UserRepository.UploadUserAvatar(ctxContext, bucketName, avatarImage.ObjectKey, imageFile, imageSize)
	if err != nil {
		return err
	}

	return nil
}
