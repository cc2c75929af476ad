// Package s3out checkpoints flushed metrics as newline-delimited JSON
// objects in an S3-compatible bucket, one object per Flush. Grounded
// directly on pkg/archive/parquet/target.go's S3Target: same
// aws-sdk-go-v2 config/credentials wiring (static credentials,
// region default, optional custom endpoint for S3-compatible stores,
// path-style addressing toggle) and the same client.PutObject call shape,
// adapted from writing whole parquet files to writing whole
// newline-delimited-JSON batches.
package s3out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/jonboulle/clockwork"
)

// Config configures the target bucket and connection.
type Config struct {
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Region       string
	UsePathStyle bool
	KeyPrefix    string
}

// Writer buffers metric writes in memory and uploads them as one object
// per Flush.
type Writer struct {
	client *s3.Client
	bucket string
	prefix string
	clock  clockwork.Clock

	mu      sync.Mutex
	records []record
}

type record struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// New connects to the S3-compatible endpoint described by cfg.
func New(ctx context.Context, cfg Config, clock clockwork.Clock) (*Writer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3out: empty bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3out: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Writer{client: client, bucket: cfg.Bucket, prefix: cfg.KeyPrefix, clock: clock}, nil
}

// NewMetric implements metrics.OutputScope.
func (w *Writer) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name.Clone()}
	dotted := name.Join(".")
	kindStr := kind.String()
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		w.mu.Lock()
		w.records = append(w.records, record{
			Name:      dotted,
			Kind:      kindStr,
			Value:     float64(v),
			Labels:    labels,
			Timestamp: w.clock.Now().Unix(),
		})
		w.mu.Unlock()
		return nil
	})
}

// Flush uploads every record written since the last Flush as one
// newline-delimited-JSON object, then clears the buffer. An empty buffer
// is a no-op.
func (w *Writer) Flush() error {
	w.mu.Lock()
	records := w.records
	w.records = nil
	w.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("s3out: encode record: %w", err)
		}
	}

	key := fmt.Sprintf("%scheckpoint_%d.ndjson", w.prefix, w.clock.Now().UnixNano())
	_, err := w.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3out: put object %q: %w", key, err)
	}
	return nil
}
