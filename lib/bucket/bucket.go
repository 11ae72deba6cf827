// Copyright (C) 2025 The Soundcrew Authors.
//
// This file is part of Soundcrew.
//
// Soundcrew is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Soundcrew is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Soundcrew.  If not, see <https://www.gnu.org/licenses/>.

package bucket

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/soundcrew/soundcrew/config"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
)

const (
	MediaAudio = config.MediaAudio
	MediaImage = config.MediaImage
)

type Bucket struct {
	config *config.BucketConfig
	s3     *s3.S3
}

type Object struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// Open the bucket configured for the provided media type (audio or image).
func OpenMedia(buckets []config.BucketConfig, mediaType string) (*Bucket, error) {
	for i := range buckets {
		if buckets[i].Media == mediaType {
			return Open(buckets[i])
		}
	}
	return nil, ErrBucketNotFound
}

// Connect to the configured S3 bucket.
// Tested: Wasabi, Backblaze, Minio
func Open(config config.BucketConfig) (*Bucket, error) {
	creds := credentials.NewStaticCredentials(
		config.AccessKeyID,
		config.SecretAccessKey, "")
	s3Config := &aws.Config{
		Credentials:      creds,
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true)}
	session, err := session.NewSession(s3Config)
	bucket := &Bucket{
		s3:     s3.New(session),
		config: &config,
	}
	return bucket, err
}

// ObjectKey builds a unique storage key: {prefix}{category}/{ownerId}/{random}.{ext}
func (b *Bucket) ObjectKey(category string, ownerID uint, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s%s/%d/%d-%s.%s", b.config.ObjectPrefix,
		category, ownerID, time.Now().Unix(), uuid.New().String(), ext)
}

// Put stores an object under key, returning its public URL.
func (b *Bucket) Put(key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := b.s3.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(b.config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return b.ObjectURL(key), nil
}

// Delete removes the object under key. Used as the compensating action when
// a database write fails after a successful upload.
func (b *Bucket) Delete(key string) error {
	_, err := b.s3.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key),
	})
	return err
}

// ObjectURL returns the public URL for key.
func (b *Bucket) ObjectURL(key string) string {
	if b.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(b.config.PublicURL, "/"), key)
	}
	scheme := "http"
	if b.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s",
		scheme, b.config.Endpoint, b.config.BucketName, key)
}

func (b *Bucket) List(lastSync time.Time) (objectCh chan *Object, err error) {
	objectCh = make(chan *Object)

	go func() {
		defer close(objectCh)

		var continuationToken *string
		continuationToken = nil
		for {
			req := s3.ListObjectsV2Input{
				Bucket: aws.String(b.config.BucketName),
				Prefix: aws.String(b.config.ObjectPrefix)}
			if continuationToken != nil {
				req.ContinuationToken = continuationToken
			}
			resp, err := b.s3.ListObjectsV2(&req)
			if err != nil {
				break
			}
			for _, obj := range resp.Contents {
				if obj.LastModified != nil &&
					obj.LastModified.After(lastSync) {
					objectCh <- &Object{
						Key:          *obj.Key,
						ETag:         *obj.ETag,
						Size:         *obj.Size,
						LastModified: *obj.LastModified,
					}
				}
			}
			if !*resp.IsTruncated {
				break
			}
			continuationToken = resp.NextContinuationToken
		}
	}()

	return
}

// Generate a presigned url which expires based on config settings.
func (b *Bucket) Presign(key string) *url.URL {
	req, _ := b.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key)})
	urlStr, _ := req.Presign(b.config.URLExpiration)
	url, _ := url.Parse(urlStr)
	return url
}
