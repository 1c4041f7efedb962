package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"
	"github.com/sportmeetapp/sportmeet/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type UserRepository struct {
	Log      *zap.Logger
	DB       *pgxpool.Pool
	DBCache  *redis.Client
	DBObject *minio.Client
}

func NewUserRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client, minio *minio.Client) *UserRepository {
	return &UserRepository{
		Log:      zap,
		DB:       db,
		DBCache:  dbCache,
		DBObject: minio,
	}
}

// Postgresql
func (repository *UserRepository) Register(ctx context.Context, tx pgx.Tx, user model.User) error {
	query := "INSERT INTO users (id,email,password,full_name,username,age,gender,favorite_sports,avatar_image_id,verified,create_datetime,update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)"

	_, err := tx.Exec(ctx, query, user.Id, user.Email, user.Password, user.FullName, user.Username, user.Age, user.Gender, user.FavoriteSports, user.AvatarImageId, user.Verified, user.CreateDatetime, user.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) CheckUsernameOrEmailUnique(ctx context.Context, username string, email string) (string, string, error) {
	query := "SELECT username,email FROM users WHERE username=$1 OR email=$2 LIMIT 1"

	var existUsername string
	var existEmail string
	err := repository.DB.QueryRow(ctx, query, username, email).Scan(&existUsername, &existEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return existUsername, existEmail, nil
		}
		return existUsername, existEmail, err
	}

	return existUsername, existEmail, nil
}

func (repository *UserRepository) CheckUsernameUnique(ctx context.Context, username string) (int, error) {
	query := "SELECT 1 FROM users WHERE username=$1 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, username).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *UserRepository) GetUserAuth(ctx context.Context, email string) (uuid.UUID, string, error) {
	query := "SELECT id,password FROM users WHERE email=$1 AND verified=TRUE LIMIT 1"

	var id uuid.UUID
	var passwordHash string

	err := repository.DB.QueryRow(ctx, query, email).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id, passwordHash, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Email is not registered",
				Param:   "email",
			}
		}
		return id, passwordHash, err
	}

	return id, passwordHash, nil
}

func (repository *UserRepository) GetUserInfo(ctx context.Context, id uuid.UUID) (model.UserResponse, error) {
	query := `SELECT A.id,A.email,A.full_name,A.username,A.age,A.gender,A.favorite_sports,B.object_key,A.create_datetime,A.update_datetime
			FROM users A
			LEFT JOIN user_avatar_images B ON A.avatar_image_id = B.id
			WHERE A.id=$1
			LIMIT 1`

	user := model.UserResponse{}
	err := repository.DB.QueryRow(ctx, query, id).Scan(&user.Id, &user.Email, &user.FullName, &user.Username, &user.Age, &user.Gender, &user.FavoriteSports, &user.AvatarImage, &user.CreateDatetime, &user.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return user, err
	}

	return user, nil
}

func (repository *UserRepository) GetParticipantProfiles(ctx context.Context, userIds []uuid.UUID) ([]model.ParticipantProfile, error) {
	query := `SELECT A.id,A.full_name,A.username,B.object_key
			FROM users A
			LEFT JOIN user_avatar_images B ON A.avatar_image_id = B.id
			WHERE A.id = ANY($1)`

	rows, err := repository.DB.Query(ctx, query, userIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.ParticipantProfile{}
	for rows.Next() {
		profile := model.ParticipantProfile{}
		err = rows.Scan(&profile.UserId, &profile.FullName, &profile.Username, &profile.AvatarImage)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return profiles, nil
}

func (repository *UserRepository) UpdateFullName(ctx context.Context, tx pgx.Tx, userId uuid.UUID, fullName string, updateDatetime time.Time) error {
	query := "UPDATE users SET full_name = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, fullName, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateUsername(ctx context.Context, tx pgx.Tx, userId uuid.UUID, username string, updateDatetime time.Time) error {
	query := "UPDATE users SET username = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, username, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateAge(ctx context.Context, tx pgx.Tx, userId uuid.UUID, age int, updateDatetime time.Time) error {
	query := "UPDATE users SET age = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, age, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateGender(ctx context.Context, tx pgx.Tx, userId uuid.UUID, gender string, updateDatetime time.Time) error {
	query := "UPDATE users SET gender = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, gender, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateFavoriteSports(ctx context.Context, tx pgx.Tx, userId uuid.UUID, favoriteSports []string, updateDatetime time.Time) error {
	query := "UPDATE users SET favorite_sports = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, favoriteSports, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}

// Redis - Cache
func (repository *UserRepository) SetAuthTokenInCache(ctx context.Context, accessToken string, refreeshToken string, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:acccessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	// Hash tokens before storing in Redis for security
	hashedAccessToken := util.HashToken(accessToken)
	hashedRefreshToken := util.HashToken(refreeshToken)

	err := repository.DBCache.Set(ctx, accessTokenKey, hashedAccessToken, 15*time.Minute).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, refreshTokenKey, hashedRefreshToken, 15*time.Minute).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error) {
	accessTokenKey := fmt.Sprintf("auth:acccessToken:%s", userId)
	hashedToken, err := repository.DBCache.Get(ctx, accessTokenKey).Result()
	if err == redis.Nil {
		return hashedToken, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Authorization token not found or expired",
			Param:   "accessToken",
		}
	} else if err != nil {
		return hashedToken, err
	}

	return hashedToken, nil
}

func (repository *UserRepository) RemoveAuthToken(ctx context.Context, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:acccessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	err := repository.DBCache.Del(ctx, accessTokenKey).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Del(ctx, refreshTokenKey).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) SetPendingSignup(ctx context.Context, pending model.PendingSignup) error {
	key := fmt.Sprintf("signup:%s", pending.Email)

	payload, err := sonic.Marshal(pending)
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, key, payload, 30*time.Minute).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetPendingSignup(ctx context.Context, email string) (model.PendingSignup, bool, error) {
	key := fmt.Sprintf("signup:%s", email)

	pending := model.PendingSignup{}
	payload, err := repository.DBCache.Get(ctx, key).Result()
	if err == redis.Nil {
		return pending, false, nil
	} else if err != nil {
		return pending, false, err
	}

	err = sonic.Unmarshal([]byte(payload), &pending)
	if err != nil {
		return pending, false, err
	}

	return pending, true, nil
}

func (repository *UserRepository) DeletePendingSignup(ctx context.Context, email string) error {
	key := fmt.Sprintf("signup:%s", email)

	err := repository.DBCache.Del(ctx, key).Err()
	if err != nil {
		return err
	}

	return nil
}

// Minio - Object storage
func (repository *UserRepository) UploadUserAvatar(ctx context.Context, bucketName string, imageName string, imageFile *bytes.Reader, imageSize int64) error {
	_, err := repository.DBObject.PutObject(ctx, bucketName, imageName, imageFile, imageSize,
		minio.PutObjectOptions{
			ContentType:  "image/webp",
			CacheControl: "public, max-age=31536000, immutable",
		})
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) DeleteUserAvatar(ctx context.Context, bucketName string, fileName string) error {
	err := repository.DBObject.RemoveObject(ctx, bucketName, fileName, minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetUserAvatar(ctx context.Context, tx pgx.Tx, userId uuid.UUID) (string, error) {
	query := "SELECT object_key FROM user_avatar_images WHERE user_id=$1 LIMIT 1"

	var objectKey string
	err := tx.QueryRow(ctx, query, userId).Scan(&objectKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return objectKey, err
	}

	return objectKey, nil
}

func (repository *UserRepository) DeleteAvatarImage(ctx context.Context, tx pgx.Tx, userId uuid.UUID) error {
	query := "DELETE FROM user_avatar_images WHERE user_id=$1"

	_, err := tx.Exec(ctx, query, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) AddUserAvatar(ctx context.Context, tx pgx.Tx, avatar model.UserAvatarImage) error {
	query := "INSERT INTO user_avatar_images (id, user_id, bucket, object_key, mime_type, size, create_datetime, update_datetime) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"

	_, err := tx.Exec(ctx, query, avatar.Id, avatar.UserId, avatar.Bucket, avatar.ObjectKey, avatar.MimeType, avatar.Size, avatar.CreateDatetime, avatar.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) SetAvatarImageId(ctx context.Context, tx pgx.Tx, userId uuid.UUID, avatarImageId uuid.UUID, updateDatetime time.Time) error {
	query := "UPDATE users SET avatar_image_id = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, avatarImageId, updateDatetime, userId)
	if err != nil {
		return err
	}

	return nil
}
