package archive_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelprint/internal/archive"
	"labelprint/internal/testsupport"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreUsesDatedKey(t *testing.T) {
	client := &fakeS3{}
	a := archive.NewS3(client, "labels-bucket", "/shop/labels/", nil)
	at := time.Date(2024, 7, 4, 23, 0, 0, 0, time.UTC)

	uri, err := a.Store(context.Background(), "/home/me/labels/SKU-1.png", []byte("PNG"), at)
	require.NoError(t, err)
	assert.Equal(t, "s3://labels-bucket/shop/labels/2024-07-04/SKU-1.png", uri)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "labels-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "shop/labels/2024-07-04/SKU-1.png", aws.ToString(in.Key))
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, []byte("PNG"), client.bodies[0])
}

func TestS3StoreWithoutPrefix(t *testing.T) {
	a := archive.NewS3(&fakeS3{}, "b", "", nil)
	assert.Equal(t, "2024-01-02/x.pdf", a.Key("x.pdf", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestS3StoreError(t *testing.T) {
	a := archive.NewS3(&fakeS3{err: errors.New("access denied")}, "b", "p", nil)
	_, err := a.Store(context.Background(), "x.png", []byte("x"), time.Now())
	assert.ErrorContains(t, err, "access denied")
}

func TestNewDisabledReturnsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a, err := archive.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, isNoop := a.(archive.Noop)
	assert.True(t, isNoop)

	uri, err := a.Store(context.Background(), "x.png", []byte("x"), time.Now())
	assert.NoError(t, err)
	assert.Empty(t, uri)
}
