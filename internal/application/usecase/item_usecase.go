package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ItemUseCase casos de uso de lectura/alta de ítems. Las cantidades no se
// tocan aquí: solo mutan por la ruta transaccional del libro de stock.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un ítem con stock cero en todas las bodegas.
func (uc *ItemUseCase) Create(in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.SKU == "" || in.Name == "" || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:              uuid.New().String(),
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		UnitCost:        in.UnitCost,
		StockByLocation: map[string]int64{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem con su stock por bodega.
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// List lista ítems paginados.
func (uc *ItemUseCase) List(limit, offset int) ([]dto.ItemResponse, error) {
	items, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, *toItemResponse(item))
	}
	return out, nil
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	stock := i.StockByLocation
	if stock == nil {
		stock = map[string]int64{}
	}
	return &dto.ItemResponse{
		ID:              i.ID,
		SKU:             i.SKU,
		Name:            i.Name,
		Description:     i.Description,
		UnitCost:        i.UnitCost,
		StockByLocation: stock,
		TotalQuantity:   i.TotalQuantity,
		CreatedAt:       i.CreatedAt,
	}
}
