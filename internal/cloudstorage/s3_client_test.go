// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cloudstorage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeS3 struct {
	pages        []*s3.ListObjectsV2Output
	listCalls    int
	deleteInputs []*s3.DeleteObjectsInput
	deleteErr    error
	failKeys     map[string]bool
	single       []string
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.listCalls]
	f.listCalls++
	if f.listCalls > 1 && aws.ToString(in.ContinuationToken) == "" {
		return nil, errors.New("missing continuation token")
	}
	return page, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deleteInputs = append(f.deleteInputs, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	out := &s3.DeleteObjectsOutput{}
	for _, obj := range in.Delete.Objects {
		if f.failKeys[aws.ToString(obj.Key)] {
			out.Errors = append(out.Errors, types.Error{Key: obj.Key, Code: aws.String("AccessDenied")})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.single = append(f.single, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Client_ListObjectsPaginates(t *testing.T) {
	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("events/e1/a.jpg")}, {Key: aws.String("events/e1/b.jpg")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents:    []types.Object{{Key: aws.String("events/e1/c.jpg")}},
			IsTruncated: aws.Bool(false),
		},
	}}
	c := newS3Client(fake, noop.NewTracerProvider().Tracer("test"))

	keys, err := c.ListObjects(context.Background(), "media", "events/e1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"events/e1/a.jpg", "events/e1/b.jpg", "events/e1/c.jpg"}, keys)
	assert.Equal(t, 2, fake.listCalls)
}

func TestS3Client_DeleteObjectsChunksQuietly(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = fmt.Sprintf("events/e1/%04d.jpg", i)
	}
	fake := &fakeS3{failKeys: map[string]bool{"events/e1/1500.jpg": true}}
	c := newS3Client(fake, noop.NewTracerProvider().Tracer("test"))

	failed, err := c.DeleteObjects(context.Background(), "media", keys)
	require.NoError(t, err)
	assert.Equal(t, []string{"events/e1/1500.jpg"}, failed)

	require.Len(t, fake.deleteInputs, 3)
	sizes := []int{}
	for _, in := range fake.deleteInputs {
		sizes = append(sizes, len(in.Delete.Objects))
		assert.True(t, aws.ToBool(in.Delete.Quiet))
		assert.Equal(t, "media", aws.ToString(in.Bucket))
	}
	assert.Equal(t, []int{1000, 1000, 500}, sizes)
}

func TestS3Client_DeleteObjectsBatchError(t *testing.T) {
	boom := errors.New("throttled")
	fake := &fakeS3{deleteErr: boom}
	c := newS3Client(fake, noop.NewTracerProvider().Tracer("test"))

	failed, err := c.DeleteObjects(context.Background(), "media", []string{"a", "b"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, failed)
}

func TestS3Client_DeleteObjectsEmpty(t *testing.T) {
	fake := &fakeS3{}
	c := newS3Client(fake, noop.NewTracerProvider().Tracer("test"))

	failed, err := c.DeleteObjects(context.Background(), "media", nil)
	assert.NoError(t, err)
	assert.Empty(t, failed)
	assert.Empty(t, fake.deleteInputs)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunk([]string{"a", "b", "c"}, 2))
}
