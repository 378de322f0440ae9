package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Vampire-js/DAAVAT/internal/handlers"
)

// DocumentRoutes defines the file-tree document routes.
func DocumentRoutes(rg *gin.RouterGroup, documentHandler *handlers.DocumentHandler) {
	rg.GET("/documents", documentHandler.ListDocuments)
	rg.GET("/documents/tree", documentHandler.GetDocumentTree)

	rg.POST("/addFolder", documentHandler.AddFolder)
	rg.POST("/addNote", documentHandler.AddNote)
	rg.POST("/addBoard", documentHandler.AddBoard)

	rg.POST("/getNoteById", documentHandler.GetNoteByID)
	rg.POST("/getBoardById", documentHandler.GetBoardByID)

	rg.POST("/updateNote", documentHandler.UpdateNote)
	rg.POST("/updateBoard", documentHandler.UpdateBoard)

	rg.POST("/renameItem", documentHandler.RenameItem)
	rg.POST("/delete", documentHandler.DeleteDocument)
}
