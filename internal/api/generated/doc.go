// Пакет generated — типы и chi-роутер, сгенерированные oapi-codegen
// из контракта api/openapi.yaml. Файлы *.gen.go не редактируются вручную.
package generated

//go:generate oapi-codegen --config=../../../api/types.cfg.yaml ../../../api/openapi.yaml
//go:generate oapi-codegen --config=../../../api/server.cfg.yaml ../../../api/openapi.yaml
