package dto

type ConfigValueResponse struct {
	Clave         string `json:"clave"`
	Valor         any    `json:"valor"`
	TipoDato      string `json:"tipo_dato"`
	Grupo         string `json:"grupo"`
	EditableAdmin bool   `json:"editable_admin"`
}

type ConfigListResponse struct {
	Status          string                `json:"status"`
	Configuraciones []ConfigValueResponse `json:"configuraciones"`
}
