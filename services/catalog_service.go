package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService maintains cabinets and printers. Printer stock counts are
// never edited here.
type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: log}
}

// PrinterInput carries the editable printer fields.
type PrinterInput struct {
	CabinetID          *uint
	Name               string
	CartridgeModel     string
	DrumModel          string
	MinCartridgeAmount int
	MinDrumAmount      int
}

func (in *PrinterInput) normalize(op string) error {
	in.Name = strings.TrimSpace(in.Name)
	in.CartridgeModel = strings.TrimSpace(in.CartridgeModel)
	in.DrumModel = strings.TrimSpace(in.DrumModel)
	if in.Name == "" {
		return validationError(op, "printer name is required")
	}
	if in.MinCartridgeAmount < 0 || in.MinDrumAmount < 0 {
		return validationError(op, "minimum amounts must not be negative")
	}
	if in.CabinetID != nil && *in.CabinetID == 0 {
		in.CabinetID = nil
	}
	return nil
}

func (s *CatalogService) ListCabinets(ctx context.Context) ([]repositories.CabinetWithCount, error) {
	rows, err := repositories.New(s.db).Cabinets.List(ctx)
	if err != nil {
		return nil, wrapStoreError("catalog.ListCabinets", err)
	}
	if rows == nil {
		rows = []repositories.CabinetWithCount{}
	}
	return rows, nil
}

func (s *CatalogService) GetCabinet(ctx context.Context, id uint) (*models.Cabinet, error) {
	const op = "catalog.GetCabinet"
	cabinet, err := repositories.New(s.db).Cabinets.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(op, ErrCabinetNotFound, "")
	}
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return cabinet, nil
}

func (s *CatalogService) CreateCabinet(ctx context.Context, name string) (*models.Cabinet, error) {
	const op = "catalog.CreateCabinet"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError(op, "cabinet name is required")
	}

	cabinet := &models.Cabinet{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		if err := r.Cabinets.Create(ctx, cabinet); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionCreate, EntityType: EntityCabinet, EntityID: cabinet.ID,
			Description: fmt.Sprintf("created cabinet %q", name),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	s.log.Info("cabinet created", zap.Uint("cabinet_id", cabinet.ID), zap.String("name", name))
	return cabinet, nil
}

func (s *CatalogService) RenameCabinet(ctx context.Context, id uint, name string) (*models.Cabinet, error) {
	const op = "catalog.RenameCabinet"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError(op, "cabinet name is required")
	}

	var cabinet *models.Cabinet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		var err error
		if cabinet, err = r.Cabinets.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(op, ErrCabinetNotFound, "")
			}
			return err
		}
		old := cabinet.Name
		cabinet.Name = name
		if err := r.Cabinets.Rename(ctx, id, name); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionUpdate, EntityType: EntityCabinet, EntityID: id,
			Description: fmt.Sprintf("renamed cabinet %q to %q", old, name),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return cabinet, nil
}

// DeleteCabinet removes the cabinet together with its printers and their
// write-off history.
func (s *CatalogService) DeleteCabinet(ctx context.Context, id uint) error {
	const op = "catalog.DeleteCabinet"
	var printerCount int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		cabinet, err := r.Cabinets.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(op, ErrCabinetNotFound, "")
			}
			return err
		}

		printerIDs, err := r.Printers.IDsByCabinet(ctx, id)
		if err != nil {
			return err
		}
		printerCount = len(printerIDs)
		if err := r.History.DeleteWriteoffsByPrinters(ctx, printerIDs); err != nil {
			return err
		}
		if err := r.Printers.DeleteByCabinet(ctx, id); err != nil {
			return err
		}
		if _, err := r.Cabinets.Delete(ctx, id); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionDelete, EntityType: EntityCabinet, EntityID: id,
			Description: fmt.Sprintf("deleted cabinet %q with %d printer(s)", cabinet.Name, printerCount),
		})
	})
	if err != nil {
		return wrapStoreError(op, err)
	}
	s.log.Info("cabinet deleted", zap.Uint("cabinet_id", id), zap.Int("printers_removed", printerCount))
	return nil
}

func (s *CatalogService) ListPrinters(ctx context.Context, cabinetID *uint) ([]repositories.PrinterListItem, error) {
	r := repositories.New(s.db)
	var (
		rows []repositories.PrinterListItem
		err  error
	)
	if cabinetID != nil {
		rows, err = r.Printers.ListByCabinet(ctx, *cabinetID)
	} else {
		rows, err = r.Printers.List(ctx)
	}
	if err != nil {
		return nil, wrapStoreError("catalog.ListPrinters", err)
	}
	if rows == nil {
		rows = []repositories.PrinterListItem{}
	}
	return rows, nil
}

func (s *CatalogService) GetPrinter(ctx context.Context, id uint) (*models.Printer, error) {
	const op = "catalog.GetPrinter"
	printer, err := repositories.New(s.db).Printers.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(op, ErrPrinterNotFound, "")
	}
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return printer, nil
}

func checkCabinet(ctx context.Context, op string, r *repositories.Repositories, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := r.Cabinets.GetByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrCabinetNotFound, "")
		}
		return err
	}
	return nil
}

// CreatePrinter registers a printer with zero stock.
func (s *CatalogService) CreatePrinter(ctx context.Context, in PrinterInput) (*models.Printer, error) {
	const op = "catalog.CreatePrinter"
	if err := in.normalize(op); err != nil {
		return nil, err
	}

	printer := &models.Printer{
		CabinetID:          in.CabinetID,
		Name:               in.Name,
		CartridgeModel:     in.CartridgeModel,
		DrumModel:          in.DrumModel,
		MinCartridgeAmount: in.MinCartridgeAmount,
		MinDrumAmount:      in.MinDrumAmount,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		if err := checkCabinet(ctx, op, r, in.CabinetID); err != nil {
			return err
		}
		if err := r.Printers.Create(ctx, printer); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionCreate, EntityType: EntityPrinter, EntityID: printer.ID,
			Description: fmt.Sprintf("created printer %q", printer.Name),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	s.log.Info("printer created", zap.Uint("printer_id", printer.ID), zap.String("name", printer.Name))
	return printer, nil
}

func (s *CatalogService) UpdatePrinter(ctx context.Context, id uint, in PrinterInput) (*models.Printer, error) {
	const op = "catalog.UpdatePrinter"
	if err := in.normalize(op); err != nil {
		return nil, err
	}

	var printer *models.Printer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		var err error
		if printer, err = r.Printers.GetForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(op, ErrPrinterNotFound, "")
			}
			return err
		}
		if err := checkCabinet(ctx, op, r, in.CabinetID); err != nil {
			return err
		}

		printer.CabinetID = in.CabinetID
		printer.Name = in.Name
		printer.CartridgeModel = in.CartridgeModel
		printer.DrumModel = in.DrumModel
		printer.MinCartridgeAmount = in.MinCartridgeAmount
		printer.MinDrumAmount = in.MinDrumAmount
		if err := r.Printers.UpdateDetails(ctx, printer); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionUpdate, EntityType: EntityPrinter, EntityID: printer.ID,
			Description: fmt.Sprintf("updated printer %q", printer.Name),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return printer, nil
}

// DeletePrinter removes a printer and its write-off history. Transfer entries
// name printers by text and are kept.
func (s *CatalogService) DeletePrinter(ctx context.Context, id uint) error {
	const op = "catalog.DeletePrinter"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		printer, err := r.Printers.GetForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrPrinterNotFound, "")
		}
		if err != nil {
			return err
		}
		if err := r.History.DeleteWriteoffsByPrinters(ctx, []uint{id}); err != nil {
			return err
		}
		if _, err := r.Printers.Delete(ctx, id); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionDelete, EntityType: EntityPrinter, EntityID: id,
			Description: fmt.Sprintf("deleted printer %q", printer.Name),
		})
	})
	if err != nil {
		return wrapStoreError(op, err)
	}
	s.log.Info("printer deleted", zap.Uint("printer_id", id))
	return nil
}
