package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/document --output domain/document --outpkg documentmock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/objectstore --output domain/objectstore --outpkg objectstoremock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/account --output domain/account --outpkg accountmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name VerificationRepository --dir ../domain/account --output domain/account --outpkg accountmock --filename verification_repository_mock.go
