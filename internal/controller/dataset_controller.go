package controller

import (
	"fmt"
	"strconv"

	"chemviz-client/internal/dto"
	"chemviz-client/internal/pkg/serverutils"
	"chemviz-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDatasetController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
	Equipment(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	GenerateReport(ctx *fiber.Ctx) error
	ExportExcel(ctx *fiber.Ctx) error
}

type datasetController struct {
	service service.IDatasetService
}

func NewDatasetController(service service.IDatasetService) IDatasetController {
	return &datasetController{service: service}
}

func (c *datasetController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
	r.Get("/summary", c.Summary)
	r.Get("/equipment", c.Equipment)
	r.Get("/history", c.History)
	r.Post("/generate-report", c.GenerateReport)
	r.Post("/export-excel", c.ExportExcel)
}

func (c *datasetController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return service.ErrNoFile
	}

	res, err := c.service.Upload(ctx.UserContext(), serverutils.UserId(ctx), file.Filename)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *datasetController) Summary(ctx *fiber.Ctx) error {
	uploadId, err := queryUploadId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Summary(ctx.UserContext(), serverutils.UserId(ctx), uploadId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *datasetController) Equipment(ctx *fiber.Ctx) error {
	uploadId, err := queryUploadId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Equipment(ctx.UserContext(), serverutils.UserId(ctx), uploadId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *datasetController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *datasetController) GenerateReport(ctx *fiber.Ctx) error {
	uploadId, err := bodyUploadId(ctx)
	if err != nil {
		return err
	}
	doc, err := c.service.ReportPDF(ctx.UserContext(), serverutils.UserId(ctx), uploadId)
	if err != nil {
		return err
	}
	return sendDocument(ctx, doc)
}

func (c *datasetController) ExportExcel(ctx *fiber.Ctx) error {
	uploadId, err := bodyUploadId(ctx)
	if err != nil {
		return err
	}
	doc, err := c.service.ExportExcel(ctx.UserContext(), serverutils.UserId(ctx), uploadId)
	if err != nil {
		return err
	}
	return sendDocument(ctx, doc)
}

func sendDocument(ctx *fiber.Ctx, doc *service.Document) error {
	ctx.Set(fiber.HeaderContentType, doc.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	return ctx.Send(doc.Data)
}

// queryUploadId reads ?upload_id=. Absent means "latest upload".
func queryUploadId(ctx *fiber.Ctx) (*int64, error) {
	raw := ctx.Query("upload_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid upload_id")
	}
	return &id, nil
}

func bodyUploadId(ctx *fiber.Ctx) (*int64, error) {
	var req dto.ExportRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.UploadId == 0 {
		return nil, nil
	}
	return &req.UploadId, nil
}
