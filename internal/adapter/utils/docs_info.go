package utils

//run redis
//docker run -p 6379:6379 -d redis

//run s3 + textract locally
//docker run -p 4566:4566 -d localstack/localstack
//AWS_ENDPOINT_URL=http://localhost:4566 S3_BUCKET_NAME=test-bucket go run ./cmd/api

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
