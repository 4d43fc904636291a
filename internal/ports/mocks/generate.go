//go:generate mockgen -source=../product_repository.go   -destination=./mock_product_repository.go   -package=mocks
//go:generate mockgen -source=../product_cache.go        -destination=./mock_product_cache.go        -package=mocks
//go:generate mockgen -source=../product_read_service.go -destination=./mock_product_read_service.go -package=mocks
//go:generate mockgen -source=../message_consumer.go     -destination=./mock_message_consumer.go     -package=mocks

package mocks
