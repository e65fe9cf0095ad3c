// Package s3 manages S3 buckets and objects.
//
// The Manager wraps the AWS SDK v2 S3 client: bucket create, list and delete,
// single-file upload and download, recursive folder transfers, listing, and
// batch deletion. Every remote call is attempted once and failures are returned
// as *errors.Error.
//
// Folder transfers run file by file. A file that fails is recorded in the
// returned TransferReport and the transfer moves on; files already transferred
// are never rolled back.
//
// Example usage:
//
//	cfg, err := awsconfig.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	mgr, err := s3.New(cfg)
//	if err != nil {
//	    return err
//	}
//	report, err := mgr.UploadFolder(ctx, "./site", "my-bucket", "www")
//	if err != nil {
//	    return err
//	}
//	for _, f := range report.Failed {
//	    log.Printf("%s: %v", f.Path, f.Err)
//	}
package s3
