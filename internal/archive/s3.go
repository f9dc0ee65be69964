// Package archive copies execution logs to S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/edvin/cronhook/internal/model"
)

// PutObjectAPI is the part of the S3 client used by the archiver.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes each execution log as a JSON object.
type S3Archiver struct {
	client PutObjectAPI
	bucket string
}

func NewS3Archiver(client PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// Key returns the object key of a log.
func Key(jobID, logID string) string {
	return "cronlog/" + jobID + "/" + logID + ".json"
}

func (a *S3Archiver) Archive(ctx context.Context, log *model.ExecutionLog) error {
	body, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal log %s: %w", log.ID, err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(log.JobID, log.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Expires:     aws.Time(log.ExpireAt),
	})
	if err != nil {
		return fmt.Errorf("put log %s to s3://%s: %w", log.ID, a.bucket, err)
	}
	return nil
}
