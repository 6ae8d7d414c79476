// Package s3 provides an S3-backed model store and a DynamoDB-backed
// registry of published model versions.
//
// The Store holds model documents as S3 objects under a configurable prefix.
// The Registry records which document is the current published version of a
// named model, using DynamoDB conditional writes so concurrent publishers
// cannot overwrite each other's versions.
package s3
