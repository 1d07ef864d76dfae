package feed

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/stabilitybot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type S3Source struct {
	client *s3.Client
	bucket string
}

func NewS3Source(i *do.Injector) (Source, error) {
	client := do.MustInvoke[*s3.Client](i)
	bucket := do.MustInvokeNamed[string](i, "bucket")
	return &S3Source{client, bucket}, nil
}

func (s *S3Source) Entries(ctx context.Context) ([]Entry, error) {
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})

	var (
		mu      sync.Mutex
		entries []Entry
	)
	group, ctx := errgroup.WithContext(ctx)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		objs := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			_, ok := store.ParseOutputName(aws.ToString(o.Key), time.Local)
			return ok
		})

		for _, obj := range objs {
			obj := obj
			group.Go(func() error {
				out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
					Bucket: aws.String(s.bucket),
					Key:    obj.Key,
				})
				if err != nil {
					return err
				}

				meta := out.Metadata
				mu.Lock()
				defer mu.Unlock()
				entries = append(entries, Entry{
					Name:    aws.ToString(obj.Key),
					Model:   meta["model"],
					Prompt:  meta["prompt"],
					Seed:    meta["seed"],
					Updated: aws.ToTime(out.LastModified),
				})
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
