package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPutObject struct {
	mock.Mock
}

func (m *MockPutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 7, 1, 18, 45, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "audit/madurai/madurai_20240701_131500.log", ObjectKey("madurai", at))
}

func TestUpload(t *testing.T) {
	data := []byte("2024-04-05T10:30:15Z|priest|POST|1|JE-2024-00001|10.00|x|POSTED|abc\n")
	sum := sha256.Sum256(data)
	at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	client := new(MockPutObject)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "ledger-archive" &&
			*in.Key == "audit/madurai/madurai_20240701_000000.log" &&
			string(body) == string(data) &&
			in.Metadata["sha256"] == hex.EncodeToString(sum[:])
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	a := &S3Archiver{client: client, bucket: "ledger-archive"}
	key, err := a.Upload(context.Background(), "madurai", data, at)
	require.NoError(t, err)
	assert.Equal(t, "audit/madurai/madurai_20240701_000000.log", key)
	client.AssertExpectations(t)
}

func TestUploadFailure(t *testing.T) {
	client := new(MockPutObject)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	a := &S3Archiver{client: client, bucket: "ledger-archive"}
	_, err := a.Upload(context.Background(), "madurai", []byte("x"), time.Now())
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3ArchiverNeedsBucket(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), Settings{Region: "auto"})
	assert.Error(t, err)
}
